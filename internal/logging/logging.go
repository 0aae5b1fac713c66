// Package logging hands out one logrus entry per subsystem, tagged
// with a "component" field, matching the --debug-<sys>/--quiet CLI
// flags in §6.7.
package logging

import "github.com/sirupsen/logrus"

// Subsystem names §6.7's --debug-<sys> flags.
type Subsystem string

const (
	Engine    Subsystem = "engine"
	VM        Subsystem = "vm"
	Video     Subsystem = "video"
	Audio     Subsystem = "audio"
	Resources Subsystem = "resources"
	Backend   Subsystem = "backend"
)

var (
	root  = logrus.New()
	entry = map[Subsystem]*logrus.Entry{}
)

func init() {
	root.SetLevel(logrus.WarnLevel)
	for _, s := range []Subsystem{Engine, VM, Video, Audio, Resources, Backend} {
		entry[s] = root.WithField("component", string(s))
	}
}

// For returns the shared logger entry for a subsystem.
func For(s Subsystem) *logrus.Entry { return entry[s] }

// SetQuiet raises the root level so only errors are logged.
func SetQuiet() { root.SetLevel(logrus.ErrorLevel) }

// SetDebug lowers the shared root logger to debug level if it is
// currently above it. Every subsystem entry logs through that one
// root logger, so debug output is enabled for all subsystems, not
// only s; s is not used to filter.
func SetDebug(s Subsystem) {
	if root.GetLevel() < logrus.DebugLevel {
		root.SetLevel(logrus.DebugLevel)
	}
}
