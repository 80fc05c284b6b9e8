package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gibdrop/internal/components/telemetry"
	"gibdrop/internal/config"
	"gibdrop/internal/liststore"
)

const (
	report_status     = "status"
	report_restart    = "restart"
	report_rebuild    = "needs-rebuild"
	report_run        = "run"
	report_list_files = "list-files"
)

var (
	ErrNoContainer = errors.New("no such container")
	ErrCancelled   = errors.New("cancelled by operator")
)

// Confirm asks the operator a yes/no question.
type Confirm func(question string) bool

// Manager drives the miner's container through the docker cli.
type Manager struct {
	cfg    config.Config
	runner Runner
	lists  liststore.Store
	tel    telemetry.API
}

func NewManager(cfg config.Config, runner Runner, tel telemetry.API) *Manager {
	return &Manager{
		cfg:    cfg,
		runner: runner,
		lists:  liststore.New(cfg.ListDir(), cfg.Lists.Active),
		tel:    telemetry.NewScopedAPI("container", tel),
	}
}

func (m *Manager) nameFilter() string {
	return fmt.Sprintf("name=^%s$", m.cfg.Container.Name)
}

func (m *Manager) docker(ctx context.Context, args ...string) (string, error) {
	return m.runner.Output(ctx, "docker", args...)
}

// Exists is true if the container exists, running or not.
func (m *Manager) Exists(ctx context.Context) (bool, error) {
	out, err := m.docker(ctx, "ps", "-a", "-q", "-f", m.nameFilter())
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

func (m *Manager) Running(ctx context.Context) (bool, error) {
	out, err := m.docker(ctx, "ps", "-q", "-f", m.nameFilter())
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

type Status struct {
	Exists  bool
	Running bool
	// docker's table of name, status and ports
	Summary string
	// tail of the logs, only when running
	RecentLogs string
}

func (m *Manager) Status(ctx context.Context) (Status, error) {
	out, err := m.docker(
		ctx,
		"ps", "-a",
		"-f", m.nameFilter(),
		"--format", "table {{.Names}}\t{{.Status}}\t{{.Ports}}",
	)
	if err != nil {
		return Status{}, err
	}

	// the first line is the table header
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		return Status{}, nil
	}
	status := Status{Exists: true, Summary: strings.TrimSpace(out)}

	status.Running, err = m.Running(ctx)
	if err != nil {
		return status, err
	}
	if !status.Running {
		return status, nil
	}

	logs, err := m.docker(ctx, "logs", "--tail", "10", m.cfg.Container.Name)
	if err != nil {
		m.tel.ReportWarning(report_status, "could not read logs", err)
		return status, nil
	}
	status.RecentLogs = logs
	return status, nil
}

// Restart restarts the container so it picks up the current list files, then
// follows its logs into `logs` for at most the configured log timeout.
func (m *Manager) Restart(ctx context.Context, logs io.Writer) error {
	exists, err := m.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrNoContainer, m.cfg.Container.Name)
	}

	_, err = m.docker(ctx, "restart", m.cfg.Container.Name)
	if err != nil {
		m.tel.ReportBroken(report_restart, err)
		return err
	}

	followCtx, cancel := context.WithTimeout(ctx, m.cfg.Container.LogTimeout())
	defer cancel()
	err = m.runner.Stream(followCtx, logs, "docker", "logs", "-f", "--tail", "20", m.cfg.Container.Name)
	if err != nil && followCtx.Err() == nil {
		m.tel.ReportWarning(report_restart, "log stream ended", err)
	}
	return nil
}

// Build builds the image from the Dockerfile, writing the Dockerfile first if missing.
func (m *Manager) Build(ctx context.Context, output io.Writer) error {
	_, err := m.EnsureDockerfile()
	if err != nil {
		return err
	}
	return m.runner.Stream(
		ctx, output,
		"docker", "build",
		"-f", m.cfg.Path(m.cfg.Container.Dockerfile),
		"-t", m.cfg.Container.FullImage(),
		m.cfg.WorkDir,
	)
}

func modTime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// NeedsRebuild is true when the image is missing or older than the Dockerfile
// or the requirements file.
func (m *Manager) NeedsRebuild(ctx context.Context) (bool, error) {
	out, err := m.docker(ctx, "image", "inspect", m.cfg.Container.FullImage(), "-f", "{{.Created}}")
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && !errors.Is(err, exec.ErrNotFound) {
			m.tel.ReportDebug("image not found", m.cfg.Container.FullImage())
			return true, nil
		}
		return false, err
	}

	created, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(out))
	if err != nil {
		m.tel.ReportWarning(report_rebuild, "unreadable image creation time", out)
		return true, nil
	}

	dockerfile, ok := modTime(m.cfg.Path(m.cfg.Container.Dockerfile))
	if !ok {
		return true, nil
	}
	changed := dockerfile
	if requirements, ok := modTime(m.cfg.Path(m.cfg.Container.Requirements)); ok && requirements.After(changed) {
		changed = requirements
	}
	return changed.After(created), nil
}

func (m *Manager) absPath(name string) (string, error) {
	return filepath.Abs(m.cfg.Path(name))
}

// RunArgs returns the `docker run` arguments of the container.
func (m *Manager) RunArgs() ([]string, error) {
	c := m.cfg.Container
	args := []string{
		"run", "-d",
		"--restart", "unless-stopped",
		"--name", c.Name,
	}

	for _, dir := range c.DataDirs {
		src, err := m.absPath(dir)
		if err != nil {
			return nil, err
		}
		args = append(args, "-v", fmt.Sprintf("%s:%s/%s", src, c.AppDir, dir))
	}

	script, err := m.absPath(m.cfg.Patch.EntryScript)
	if err != nil {
		return nil, err
	}
	args = append(args, "-v", fmt.Sprintf("%s:%s/%s:ro", script, c.AppDir, filepath.Base(m.cfg.Patch.EntryScript)))

	for _, name := range m.cfg.Lists.Files() {
		src, err := filepath.Abs(m.lists.Path(name))
		if err != nil {
			return nil, err
		}
		args = append(args, "-v", fmt.Sprintf("%s:%s/%s", src, c.AppDir, name))
	}

	args = append(args, "-p", c.Port, c.FullImage())
	return args, nil
}

// Run starts a new container. An existing container is only stopped and removed
// once `confirm` agrees, otherwise ErrCancelled is returned.
func (m *Manager) Run(ctx context.Context, confirm Confirm) error {
	created, err := m.lists.EnsureFiles(m.cfg.Lists.Files()...)
	if err != nil {
		return err
	}
	for _, name := range created {
		m.tel.ReportDebug("created missing list file", name)
	}
	if len(created) > 0 {
		m.tel.ReportCount(report_list_files, int64(len(created)))
	}

	exists, err := m.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		running, err := m.Running(ctx)
		if err != nil {
			return err
		}

		question := fmt.Sprintf("A stopped container named '%s' already exists. Remove it and create a new one?", m.cfg.Container.Name)
		if running {
			question = fmt.Sprintf("A container named '%s' is already running. Stop and remove it before starting a new one?", m.cfg.Container.Name)
		}
		if !confirm(question) {
			return ErrCancelled
		}

		if running {
			_, err = m.docker(ctx, "stop", m.cfg.Container.Name)
			if err != nil {
				return err
			}
		}
		_, err = m.docker(ctx, "rm", m.cfg.Container.Name)
		if err != nil {
			return err
		}
	}

	args, err := m.RunArgs()
	if err != nil {
		return err
	}
	m.tel.ReportDebug("docker run", args)
	_, err = m.docker(ctx, args...)
	if err != nil {
		m.tel.ReportBroken(report_run, err)
		return err
	}
	return nil
}
