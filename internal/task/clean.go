package task

import "strings"

// CleanFlags describes which cached artifacts must be discarded before a
// task reprocesses them. It is computed fresh per clean invocation from
// the global switches and never stored on the task.
type CleanFlags struct {
	// Redownload discards downloaded archives or cloned repositories.
	Redownload bool
	// Reextract discards the extracted source tree.
	Reextract bool
	// Reconfigure discards configure/cmake output.
	Reconfigure bool
	// Rebuild discards compiled build output.
	Rebuild bool
}

// MakeCleanFlags combines the clean flags from the global switches.
// It is a pure function of the four configuration values.
func MakeCleanFlags(c Conf) CleanFlags {
	return CleanFlags{
		Redownload:  c.Redownload(),
		Reextract:   c.Reextract(),
		Reconfigure: c.Reconfigure(),
		Rebuild:     c.Rebuild(),
	}
}

// IsZero reports whether no flag is set.
func (f CleanFlags) IsZero() bool {
	return f == CleanFlags{}
}

// String lists the set flags in a fixed order, joined by "|". The zero
// value formats as the empty string.
func (f CleanFlags) String() string {
	var v []string

	if f.Redownload {
		v = append(v, "redownload")
	}
	if f.Reextract {
		v = append(v, "reextract")
	}
	if f.Reconfigure {
		v = append(v, "reconfigure")
	}
	if f.Rebuild {
		v = append(v, "rebuild")
	}

	return strings.Join(v, "|")
}
