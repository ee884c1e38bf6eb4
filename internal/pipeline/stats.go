package pipeline

import (
	"fmt"
	"sync"
	"time"

	"avedit/logger"
)

type batchStats struct {
	mu               sync.Mutex
	TotalVideos      int
	Processed        int
	Succeeded        int
	Failed           int
	OutputFiles      int
	TotalOutputBytes int64
}

func (s *batchStats) recordSuccess(outputs int, bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Processed++
	s.Succeeded++
	s.OutputFiles += outputs
	s.TotalOutputBytes += bytes
}

func (s *batchStats) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Processed++
	s.Failed++
}

func (s *batchStats) summarize(console *logger.Console, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := console.NewTable([]string{"Metric", "Value"})
	table.AddRow("Videos processed", fmt.Sprintf("%d/%d", s.Succeeded, s.TotalVideos))
	table.AddRow("Failed", fmt.Sprintf("%d", s.Failed))
	table.AddRow("Outputs written", fmt.Sprintf("%d", s.OutputFiles))
	table.AddRow("Output size", fmt.Sprintf("%.2f MB", float64(s.TotalOutputBytes)/1024/1024))
	table.AddRow("Elapsed", elapsed.Round(time.Second).String())

	console.Info("\nProcessing Summary:")
	table.Print()
}
