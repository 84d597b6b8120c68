package main

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

const samplingInterval = 10 * time.Millisecond

var rssBytesFunc = rssBytes

// measurePeakMemory runs fn while sampling resident memory and returns fn's
// summary together with the highest reading seen.
func measurePeakMemory(fn func() Summary) (Summary, float64) {
	peak := rssBytesFunc()

	var mu sync.Mutex
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(samplingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				current := rssBytesFunc()
				mu.Lock()
				if current > peak {
					peak = current
				}
				mu.Unlock()
			case <-stop:
				return
			}
		}
	}()

	summary := fn()
	close(stop)
	wg.Wait()

	if current := rssBytesFunc(); current > peak {
		peak = current
	}
	return summary, peak
}

func rssBytes() float64 {
	if runtime.GOOS == "linux" {
		if v := vmRSSFrom("/proc/self/status"); v > 0 {
			return v
		}
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return float64(ms.Sys)
}

// vmRSSFrom reads the VmRSS line of a /proc status file, reported in kB.
func vmRSSFrom(path string) float64 {
	file, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		rest, ok := strings.CutPrefix(scanner.Text(), "VmRSS:")
		if !ok {
			continue
		}
		parts := strings.Fields(rest)
		if len(parts) == 0 {
			return 0
		}
		kb, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return 0
		}
		return float64(kb * 1024)
	}
	return 0
}
