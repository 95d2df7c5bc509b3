// Package cuisine derives food type tags for a place from its provider
// categories and its display name.
package cuisine

import "strings"

// Fallback is the tag assigned when no classifier rule matches.
const Fallback = "Restaurant"

// Wheel is the canonical list of food types offered on the cuisine wheel.
var Wheel = []string{
	"Italian", "Chinese", "Mexican", "Japanese", "Indian", "Thai",
	"American", "Mediterranean", "Greek", "French", "Korean", "Vietnamese",
	"Pizza", "Burgers", "Sushi", "BBQ", "Seafood", "Steakhouse",
	"Vegetarian", "Vegan", "Desserts", "Coffee", "Fast Food", "Fine Dining",
}

// categoryTags maps provider category labels to food type tags.
// Unrecognized labels are ignored.
var categoryTags = map[string]string{
	"restaurant":        "Restaurant",
	"food":              "Food",
	"establishment":     "Establishment",
	"point_of_interest": "Point of Interest",
	"meal_takeaway":     "Fast Food",
	"meal_delivery":     "Fast Food",
	"cafe":              "Coffee",
	"bar":               "Bar",
	"bakery":            "Desserts",
}

type keywordTag struct {
	keyword string
	tag     string
}

// nameKeywords is an ordered keyword table matched against the lowercased
// display name. Every matching keyword contributes its tag; order decides
// tag display order. One entry per keyword: "curry" maps to Indian only.
var nameKeywords = []keywordTag{
	{"burger", "Burgers"},
	{"burgers", "Burgers"},
	{"hamburger", "Burgers"},
	{"hamburgers", "Burgers"},
	{"cheeseburger", "Burgers"},
	{"cheeseburgers", "Burgers"},
	{"in-n-out", "Burgers"},
	{"in n out", "Burgers"},
	{"innout", "Burgers"},
	{"habit", "Burgers"},
	{"habit burger", "Burgers"},
	{"five guys", "Burgers"},
	{"fiveguys", "Burgers"},
	{"wendy", "Burgers"},
	{"wendys", "Burgers"},
	{"mcdonald", "Burgers"},
	{"mcdonalds", "Burgers"},
	{"burger king", "Burgers"},
	{"burgerking", "Burgers"},
	{"shake shack", "Burgers"},
	{"shakeshack", "Burgers"},
	{"whataburger", "Burgers"},
	{"carls jr", "Burgers"},
	{"carlsjr", "Burgers"},
	{"jack in the box", "Burgers"},
	{"jackinthebox", "Burgers"},
	{"sonic", "Burgers"},
	{"a&w", "Burgers"},
	{"aw", "Burgers"},

	{"pizza", "Pizza"},
	{"pizzeria", "Pizza"},
	{"domino", "Pizza"},
	{"dominos", "Pizza"},
	{"pizza hut", "Pizza"},
	{"pizzahut", "Pizza"},
	{"papa john", "Pizza"},
	{"papajohn", "Pizza"},
	{"little caesar", "Pizza"},
	{"littlecaesar", "Pizza"},

	{"chinese", "Chinese"},
	{"china", "Chinese"},
	{"mandarin", "Chinese"},
	{"szechuan", "Chinese"},
	{"sichuan", "Chinese"},
	{"dim sum", "Chinese"},
	{"dimsum", "Chinese"},

	{"mexican", "Mexican"},
	{"taco", "Mexican"},
	{"tacos", "Mexican"},
	{"burrito", "Mexican"},
	{"burritos", "Mexican"},
	{"enchilada", "Mexican"},
	{"enchiladas", "Mexican"},
	{"quesadilla", "Mexican"},
	{"quesadillas", "Mexican"},
	{"chipotle", "Mexican"},
	{"taco bell", "Mexican"},
	{"tacobell", "Mexican"},
	{"del taco", "Mexican"},
	{"deltaco", "Mexican"},

	{"italian", "Italian"},
	{"pasta", "Italian"},
	{"spaghetti", "Italian"},
	{"lasagna", "Italian"},
	{"ravioli", "Italian"},
	{"olive garden", "Italian"},
	{"olivegarden", "Italian"},

	{"japanese", "Japanese"},
	{"sushi", "Sushi"},
	{"sashimi", "Sushi"},
	{"ramen", "Japanese"},
	{"teriyaki", "Japanese"},
	{"tempura", "Japanese"},
	{"bento", "Japanese"},

	{"thai", "Thai"},
	{"pad thai", "Thai"},
	{"padthai", "Thai"},
	// "curry" overlaps Thai and Indian; last table revision wins.
	{"curry", "Indian"},
	{"tom yum", "Thai"},
	{"tomyum", "Thai"},

	{"indian", "Indian"},
	{"tandoori", "Indian"},
	{"naan", "Indian"},
	{"biryani", "Indian"},

	{"seafood", "Seafood"},
	{"fish", "Seafood"},
	{"shrimp", "Seafood"},
	{"crab", "Seafood"},
	{"lobster", "Seafood"},
	{"oyster", "Seafood"},

	{"bbq", "BBQ"},
	{"barbecue", "BBQ"},
	{"smoke", "BBQ"},
	{"smoked", "BBQ"},

	{"coffee", "Coffee"},
	{"starbucks", "Coffee"},
	{"dunkin", "Coffee"},
	{"dunkin donuts", "Coffee"},
	{"dunkindonuts", "Coffee"},
	{"peet", "Coffee"},
	{"peets", "Coffee"},

	{"steak", "Steakhouse"},
	{"steakhouse", "Steakhouse"},
	{"outback", "Steakhouse"},
	{"longhorn", "Steakhouse"},
	{"texas roadhouse", "Steakhouse"},
	{"texasroadhouse", "Steakhouse"},

	{"greek", "Greek"},
	{"french", "French"},
	{"korean", "Korean"},
	{"vietnamese", "Vietnamese"},
	{"mediterranean", "Mediterranean"},
	{"american", "American"},
	{"vegetarian", "Vegetarian"},
	{"vegan", "Vegan"},
	{"dessert", "Desserts"},
	{"bakery", "Desserts"},
	{"ice cream", "Desserts"},
	{"icecream", "Desserts"},
}

// Classify returns the food type tags for a place. It never returns an
// empty slice: when neither the category labels nor the display name match
// any rule, the single Fallback tag is returned.
func Classify(categories []string, displayName string) []string {
	var tags []string

	for _, c := range categories {
		if tag, ok := categoryTags[c]; ok {
			tags = append(tags, tag)
		}
	}

	name := strings.ToLower(displayName)
	for _, kw := range nameKeywords {
		if strings.Contains(name, kw.keyword) {
			tags = append(tags, kw.tag)
		}
	}

	unique := dedupe(tags)
	if len(unique) == 0 {
		unique = []string{Fallback}
	}

	return unique
}

// dedupe removes duplicates preserving first occurrence order.
func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := tags[:0]

	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	return out
}
