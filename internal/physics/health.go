package physics

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// workerHealth — самонаблюдение планировщика: периодический снимок CPU/памяти
// процесса, которым владеет планировщик, а не отдельный REST-слой. Раньше
// этот набор функций (ServerMetrics) жил в удалённом административном API —
// здесь планировщик только снимает эти значения и отдаёт их через Snapshot;
// сам он по ним решений не принимает.
type workerHealth struct {
	mu        sync.Mutex
	startedAt time.Time
	lastCPU   float64
	lastMemMB float64
}

func newWorkerHealth() *workerHealth {
	return &workerHealth{startedAt: time.Now()}
}

// Sample снимает использование CPU процессом (среднее с момента запуска
// процесса; если оно недоступно — системный CPU% за замер в 100мс, на время
// которого вызов блокируется) и памяти кучи, сохраняя их как последние
// известные значения для Snapshot.
func (h *workerHealth) Sample() {
	cpuPercent, err := processCPUPercent()
	var memMB float64
	if err == nil {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		memMB = float64(m.HeapAlloc) / 1024 / 1024
	}

	h.mu.Lock()
	if err == nil {
		h.lastCPU = cpuPercent
		h.lastMemMB = memMB
	}
	h.mu.Unlock()
}

// Snapshot возвращает последние известные CPU% и используемую память кучи в МБ.
func (h *workerHealth) Snapshot() (cpuPercent, heapMB float64, uptime time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastCPU, h.lastMemMB, time.Since(h.startedAt)
}

func processCPUPercent() (float64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	percent, err := proc.CPUPercent()
	if err != nil {
		percents, sysErr := cpu.Percent(100*time.Millisecond, false)
		if sysErr != nil || len(percents) == 0 {
			return 0, sysErr
		}
		return percents[0], nil
	}
	return percent, nil
}
