package environment

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"gibdrop/internal/config"
	"gibdrop/internal/cookies"
	"gibdrop/internal/liststore"
	"gibdrop/internal/patcher"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/process"
)

// Readiness lists what the host provides, nothing is installed or modified
// while probing.
type Readiness struct {
	OS       string
	Platform string

	DockerCli     string
	DockerDaemon  bool
	EntryScript   bool
	ScriptPatched bool
	CookieFile    string
	ActiveList    string

	Problems []string
}

// Ready is true when the miner can be started in a container.
func (r Readiness) Ready() bool {
	return len(r.Problems) == 0
}

type Checker struct {
	cfg       config.Config
	lookPath  func(file string) (string, error)
	hostInfo  func(ctx context.Context) (*host.InfoStat, error)
	processes func(ctx context.Context) ([]string, error)
}

func NewChecker(cfg config.Config) Checker {
	return Checker{
		cfg:       cfg,
		lookPath:  exec.LookPath,
		hostInfo:  host.InfoWithContext,
		processes: processNames,
	}
}

func processNames(ctx context.Context) ([]string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

var daemonNames = []string{"dockerd", "com.docker.backend", "Docker Desktop"}

func (c Checker) Check(ctx context.Context) Readiness {
	var r Readiness

	info, err := c.hostInfo(ctx)
	if err == nil && info != nil {
		r.OS = info.OS
		r.Platform = info.Platform
		if info.OS != "linux" {
			r.Problems = append(r.Problems, "container management is only supported on linux, host is "+info.OS)
		}
	}

	path, err := c.lookPath("docker")
	if err != nil {
		r.Problems = append(r.Problems, "docker cli not found on PATH")
	} else {
		r.DockerCli = path
	}

	names, err := c.processes(ctx)
	if err == nil {
		for _, name := range names {
			for _, daemon := range daemonNames {
				if name == daemon {
					r.DockerDaemon = true
				}
			}
		}
	}
	if !r.DockerDaemon {
		r.Problems = append(r.Problems, "docker daemon is not running")
	}

	script, err := os.ReadFile(c.cfg.Path(c.cfg.Patch.EntryScript))
	if err != nil {
		r.Problems = append(r.Problems, "entry script "+c.cfg.Patch.EntryScript+" is missing, run `gibdrop patch`")
	} else {
		r.EntryScript = true
		r.ScriptPatched = strings.Contains(string(script), patcher.LoaderMarker)
		if !r.ScriptPatched {
			r.Problems = append(r.Problems, "entry script is not patched, run `gibdrop patch`")
		}
	}

	cookiePaths := make([]string, len(c.cfg.Cookies.Paths))
	for i, p := range c.cfg.Cookies.Paths {
		cookiePaths[i] = c.cfg.Path(p)
	}
	r.CookieFile = cookies.Find(cookiePaths)

	active, err := liststore.New(c.cfg.ListDir(), c.cfg.Lists.Active).Active()
	if err == nil {
		r.ActiveList = active
	}
	if r.ActiveList == "" {
		r.Problems = append(r.Problems, "no active streamer list, run `gibdrop streamers use`")
	}

	return r
}
