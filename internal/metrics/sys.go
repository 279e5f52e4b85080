package metrics

import (
	"io/fs"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
)

var startedAt = time.Now()

// SysHealth is a snapshot of the process and of the data it keeps on disk.
type SysHealth struct {
	AllocMB    uint64 `json:"allocMB"`
	SysMB      uint64 `json:"sysMB"`
	NumGC      uint32 `json:"numGC"`
	Goroutines int    `json:"goroutines"`
	Uptime     string `json:"uptime"`
	DataFiles  int    `json:"dataFiles"`
	DataSize   string `json:"dataSize"`
}

// GetSysHealth reads runtime memory stats and sums the files under dataPath.
// A missing dataPath counts as empty.
func GetSysHealth(dataPath string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	files, size := dirUsage(dataPath)
	return SysHealth{
		AllocMB:    m.Alloc / 1024 / 1024,
		SysMB:      m.Sys / 1024 / 1024,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
		Uptime:     time.Since(startedAt).Truncate(time.Second).String(),
		DataFiles:  files,
		DataSize:   humanize.IBytes(size),
	}
}

func dirUsage(root string) (files int, size uint64) {
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files++
		size += uint64(info.Size())
		return nil
	})
	return files, size
}
