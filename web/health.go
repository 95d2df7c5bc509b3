package web

import (
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

type healthResponse struct {
	Status         string  `json:"status"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	Goroutines     int     `json:"goroutines"`
	MemUsedPercent float64 `json:"mem_used_percent"`
	CPUPercent     float64 `json:"cpu_percent"`
}

func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	ans := healthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(s.started).Seconds(),
		Goroutines:    runtime.NumGoroutine(),
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		ans.MemUsedPercent = vm.UsedPercent
	}

	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		ans.CPUPercent = pct[0]
	}

	renderJSON(w, http.StatusOK, ans)
}
