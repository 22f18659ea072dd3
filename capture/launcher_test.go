package capture

import (
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"testing"
	"time"

	"github.com/achernya/tvcapture/db"
	"github.com/achernya/tvcapture/scheduler"
)

func TestExecLauncherRun(t *testing.T) {
	tests := map[string]struct {
		tool    string
		wantErr bool
	}{
		"success": {"true", false},
		"failure": {"false", true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			bin, err := exec.LookPath(tt.tool)
			if err != nil {
				t.Skip(err)
			}
			err = ExecLauncher{}.Run(t.Context(), []string{bin}, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("got %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
	if err := (ExecLauncher{}).Run(t.Context(), nil, nil); err != nil {
		t.Errorf("empty hook: %v", err)
	}
}

func TestRecordWithRealProcess(t *testing.T) {
	d, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	fake, err := filepath.Abs(path.Join("..", "mencoder", "testdata", "fakemplayer.sh"))
	if err != nil {
		t.Fatal(err)
	}
	c := New(Config{
		Mencoder:  fake,
		Mplayer:   fake,
		DB:        d,
		Scheduler: scheduler.New(),
		Interval:  10 * time.Millisecond,
	})
	p := recordParams()
	p.OutputFile = filepath.Join(t.TempDir(), "capture_{channel}.avi")
	file, err := c.Record(t.Context(), p, false)
	if err != nil {
		t.Fatal(err)
	}
	stored := func() int64 {
		var entries int64
		if err := d.Model(&db.CommandLogEntry{}).Count(&entries).Error; err != nil {
			t.Fatal(err)
		}
		return entries
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(file); err == nil && stored() > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("recorder never started writing")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err := c.Stop(); err != nil {
		t.Fatal(err)
	}
	c.Wait()
	if got := c.Status().Recorder; got != Killed {
		t.Errorf("recorder is %v", got)
	}
}
