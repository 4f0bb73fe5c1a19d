// SPDX-License-Identifier: MPL-2.0

package container

import (
	"path/filepath"
	"slices"
	"testing"
)

func TestBaseCLIEngine_BuildArgs(t *testing.T) {
	t.Parallel()
	engine := NewBaseCLIEngine("/usr/bin/docker")

	tests := []struct {
		name     string
		opts     BuildOptions
		expected []string
	}{
		{
			name: "minimal build",
			opts: BuildOptions{
				ContextDir: ".",
			},
			expected: []string{"build", "."},
		},
		{
			name: "build with tag",
			opts: BuildOptions{
				ContextDir: "/env",
				Tags:       []ImageTag{"texbox-toollatex:latest"},
			},
			expected: []string{"build", "-t", "texbox-toollatex:latest", "/env"},
		},
		{
			name: "build with version and latest tags",
			opts: BuildOptions{
				ContextDir: "/env",
				Tags:       []ImageTag{"texbox-toollatex:main-2026-08-30-0a1b2c3", "texbox-toollatex:latest"},
			},
			expected: []string{
				"build",
				"-t", "texbox-toollatex:main-2026-08-30-0a1b2c3",
				"-t", "texbox-toollatex:latest",
				"/env",
			},
		},
		{
			name: "build with dockerfile",
			opts: BuildOptions{
				ContextDir: "/env",
				Dockerfile: "Dockerfile.tex",
			},
			expected: []string{"build", "-f", filepath.Join("/env", "Dockerfile.tex"), "/env"},
		},
		{
			name: "build with no-cache",
			opts: BuildOptions{
				ContextDir: ".",
				NoCache:    true,
			},
			expected: []string{"build", "--no-cache", "."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args := engine.BuildArgs(tt.opts)

			if len(args) != len(tt.expected) {
				t.Errorf("got %d args, want %d args\ngot:  %v\nwant: %v", len(args), len(tt.expected), args, tt.expected)
				return
			}

			for i, exp := range tt.expected {
				if args[i] != exp {
					t.Errorf("arg[%d] = %q, want %q\nfull args: %v", i, args[i], exp, args)
				}
			}
		})
	}
}

func TestBaseCLIEngine_BuildArgsWithBuildArgs(t *testing.T) {
	t.Parallel()
	engine := NewBaseCLIEngine("/usr/bin/docker")

	args := engine.BuildArgs(BuildOptions{
		ContextDir: ".",
		BuildArgs: map[string]string{
			"HOST_USER_UID": "1000",
			"HOST_USER_GID": "1000",
		},
	})

	// Map iteration order is non-deterministic; check both pairs are present.
	uidFound := false
	gidFound := false
	for i, arg := range args {
		if arg == "--build-arg" && i+1 < len(args) {
			switch args[i+1] {
			case "HOST_USER_UID=1000":
				uidFound = true
			case "HOST_USER_GID=1000":
				gidFound = true
			}
		}
	}

	if !uidFound {
		t.Errorf("missing HOST_USER_UID=1000 build arg\nargs: %v", args)
	}
	if !gidFound {
		t.Errorf("missing HOST_USER_GID=1000 build arg\nargs: %v", args)
	}
}

func TestBaseCLIEngine_CreateArgs(t *testing.T) {
	t.Parallel()
	engine := NewBaseCLIEngine("/usr/bin/docker")

	tests := []struct {
		name     string
		opts     CreateOptions
		contains []string
		excludes []string
	}{
		{
			name: "minimal create",
			opts: CreateOptions{
				Image: "texbox-toollatex:latest",
				Name:  "texbox-toollatex",
			},
			contains: []string{"create", "--name", "texbox-toollatex", "texbox-toollatex:latest"},
			excludes: []string{"--privileged", "-i", "-t"},
		},
		{
			name: "privileged interactive tty",
			opts: CreateOptions{
				Image:       "texbox-toollatex:latest",
				Name:        "texbox-toollatex",
				Privileged:  true,
				Interactive: true,
				TTY:         true,
			},
			contains: []string{"--privileged", "-i", "-t"},
		},
		{
			name: "create with entrypoint and command",
			opts: CreateOptions{
				Image:      "texbox-toollatex:latest",
				Name:       "texbox-toollatex",
				Entrypoint: "/usr/local/bin/texbox-entry",
				Command:    []string{"entry", "--", "sleep", "infinity"},
			},
			contains: []string{"--entrypoint", "/usr/local/bin/texbox-entry", "entry", "sleep", "infinity"},
		},
		{
			name: "create with volume",
			opts: CreateOptions{
				Image: "texbox-toollatex:latest",
				Name:  "texbox-toollatex",
				Volumes: []VolumeMount{
					{HostPath: "/home/me/cv/resume", ContainerPath: "/code", ReadOnly: true},
				},
			},
			contains: []string{"-v", "/home/me/cv/resume:/code:ro"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args := engine.CreateArgs(tt.opts)

			for _, exp := range tt.contains {
				if !slices.Contains(args, exp) {
					t.Errorf("args missing %q\nfull args: %v", exp, args)
				}
			}
			for _, exc := range tt.excludes {
				if slices.Contains(args, exc) {
					t.Errorf("args should not contain %q\nfull args: %v", exc, args)
				}
			}
		})
	}
}

func TestBaseCLIEngine_CreateArgsCommandAfterImage(t *testing.T) {
	t.Parallel()
	engine := NewBaseCLIEngine("/usr/bin/docker")

	args := engine.CreateArgs(CreateOptions{
		Image:   "texbox-toollatex:latest",
		Name:    "texbox-toollatex",
		Command: []string{"sleep", "infinity"},
	})

	imageIdx := slices.Index(args, "texbox-toollatex:latest")
	sleepIdx := slices.Index(args, "sleep")
	if imageIdx < 0 || sleepIdx < 0 || sleepIdx < imageIdx {
		t.Errorf("command must follow image\nfull args: %v", args)
	}
}

func TestBaseCLIEngine_RunArgs(t *testing.T) {
	t.Parallel()
	engine := NewBaseCLIEngine("/usr/bin/docker")

	tests := []struct {
		name     string
		opts     RunOptions
		contains []string
	}{
		{
			name: "minimal run",
			opts: RunOptions{
				Image: "texbox-toollatex:latest",
			},
			contains: []string{"run", "texbox-toollatex:latest"},
		},
		{
			name: "run with rm and privileged",
			opts: RunOptions{
				Image:      "texbox-toollatex:latest",
				Remove:     true,
				Privileged: true,
			},
			contains: []string{"run", "--rm", "--privileged"},
		},
		{
			name: "run with workdir and command",
			opts: RunOptions{
				Image:   "texbox-toollatex:latest",
				WorkDir: "/texbox/work",
				Command: []string{"latexmk", "-f"},
			},
			contains: []string{"-w", "/texbox/work", "latexmk", "-f"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args := engine.RunArgs(tt.opts)
			for _, exp := range tt.contains {
				if !slices.Contains(args, exp) {
					t.Errorf("args missing %q\nfull args: %v", exp, args)
				}
			}
		})
	}
}

func TestBaseCLIEngine_ExecArgs(t *testing.T) {
	t.Parallel()
	engine := NewBaseCLIEngine("/usr/bin/docker")

	tests := []struct {
		name     string
		cname    ContainerName
		command  []string
		opts     ExecOptions
		contains []string
	}{
		{
			name:     "simple exec",
			cname:    "texbox-toollatex",
			command:  []string{"latexmk"},
			contains: []string{"exec", "texbox-toollatex", "latexmk"},
		},
		{
			name:     "exec interactive",
			cname:    "texbox-toollatex",
			command:  []string{"/bin/bash"},
			opts:     ExecOptions{Interactive: true, TTY: true},
			contains: []string{"exec", "-i", "-t", "texbox-toollatex", "/bin/bash"},
		},
		{
			name:     "exec with env",
			cname:    "texbox-toollatex",
			command:  []string{"env"},
			opts:     ExecOptions{Env: map[string]string{"HOST_USER_UID": "1000"}},
			contains: []string{"-e", "HOST_USER_UID=1000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args := engine.ExecArgs(tt.cname, tt.command, tt.opts)
			for _, exp := range tt.contains {
				if !slices.Contains(args, exp) {
					t.Errorf("args missing %q\nfull args: %v", exp, args)
				}
			}
		})
	}
}

func TestBaseCLIEngine_RemoveArgs(t *testing.T) {
	t.Parallel()
	engine := NewBaseCLIEngine("/usr/bin/docker")

	tests := []struct {
		name     string
		cname    ContainerName
		force    bool
		expected []string
	}{
		{
			name:     "remove without force",
			cname:    "texbox-toollatex",
			expected: []string{"rm", "texbox-toollatex"},
		},
		{
			name:     "remove with force",
			cname:    "texbox-toollatex",
			force:    true,
			expected: []string{"rm", "-f", "texbox-toollatex"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args := engine.RemoveArgs(tt.cname, tt.force)
			if !slices.Equal(args, tt.expected) {
				t.Errorf("RemoveArgs = %v, want %v", args, tt.expected)
			}
		})
	}
}

func TestBaseCLIEngine_ListingArgs(t *testing.T) {
	t.Parallel()
	engine := NewBaseCLIEngine("/usr/bin/docker")

	psArgs := engine.ContainersArgs("texbox-toollatex")
	wantPs := []string{"ps", "-a", "--filter", "name=texbox-toollatex", "--format", "{{.ID}}"}
	if !slices.Equal(psArgs, wantPs) {
		t.Errorf("ContainersArgs = %v, want %v", psArgs, wantPs)
	}

	imgArgs := engine.ImagesArgs("texbox-toollatex")
	wantImg := []string{"images", "--filter", "reference=texbox-toollatex", "--format", "{{.ID}}\t{{.CreatedAt}}"}
	if !slices.Equal(imgArgs, wantImg) {
		t.Errorf("ImagesArgs = %v, want %v", imgArgs, wantImg)
	}

	startArgs := engine.StartArgs("texbox-toollatex")
	if !slices.Equal(startArgs, []string{"start", "texbox-toollatex"}) {
		t.Errorf("StartArgs = %v, want [start texbox-toollatex]", startArgs)
	}
}
