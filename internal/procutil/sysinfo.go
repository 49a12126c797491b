package procutil

import (
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// EnvironmentSummary describes the host the pipeline runs on, for the top of
// the run log. Failures to read any piece degrade to "unknown" rather than
// failing the run.
func EnvironmentSummary() string {
	platform := "unknown"
	if info, err := host.Info(); err == nil {
		platform = fmt.Sprintf("%s %s (%s)", info.Platform, info.PlatformVersion, info.KernelArch)
	}

	cores := "?"
	if n, err := cpu.Counts(true); err == nil {
		cores = fmt.Sprintf("%d", n)
	}

	memory := "unknown"
	if vm, err := mem.VirtualMemory(); err == nil {
		memory = fmt.Sprintf("%.1f GB total, %.1f GB available",
			float64(vm.Total)/(1024*1024*1024),
			float64(vm.Available)/(1024*1024*1024))
	}

	elevated := "no"
	if Elevated() {
		elevated = "yes"
	}

	return strings.Join([]string{
		"OS: " + platform,
		"CPUs: " + cores,
		"Memory: " + memory,
		"Elevated: " + elevated,
	}, ", ")
}
