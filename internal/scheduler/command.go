package scheduler

import (
	"path/filepath"
	"strings"
)

// EntryCommand is the argv that runs job on the execution side.
func EntryCommand(job *Job, entrypoint []string) ([]string, error) {
	if len(entrypoint) == 0 {
		entrypoint = DefaultEntrypoint
	}
	flags, err := EncodeArgs(job.Args)
	if err != nil {
		return nil, err
	}
	argv := make([]string, 0, len(entrypoint)+2+len(flags))
	argv = append(argv, entrypoint...)
	argv = append(argv, "--app", job.App)
	return append(argv, flags...), nil
}

// ShellScript changes into the project directory, activates the job's
// virtualenv when one is set, and execs the entry command.
func ShellScript(job *Job, entrypoint []string) (string, error) {
	argv, err := EntryCommand(job, entrypoint)
	if err != nil {
		return "", err
	}
	var steps []string
	if job.ProjectDir != "" {
		steps = append(steps, "cd "+shellQuote(job.ProjectDir))
	}
	if job.VirtualenvPath != "" {
		steps = append(steps, ". "+shellQuote(filepath.Join(job.VirtualenvPath, "bin", "activate")))
	}
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = shellQuote(a)
	}
	steps = append(steps, "exec "+strings.Join(quoted, " "))
	return strings.Join(steps, " && "), nil
}

func shellQuote(s string) string {
	if s != "" && strings.Trim(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_./=:,+@%") == "" {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
