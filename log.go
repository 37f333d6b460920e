/*
Copyright © 2023 the BGCData authors.
This file is part of BGCData.

BGCData is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

BGCData is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with BGCData.  If not, see <http://www.gnu.org/licenses/>.
*/

package bgcdata

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log receives the progress messages of all the packages of this module.
var Log = &logrus.Logger{
	Out:       os.Stderr,
	Formatter: &logrus.TextFormatter{DisableTimestamp: true},
	Hooks:     make(logrus.LevelHooks),
	Level:     logrus.WarnLevel,
}

// Verbosity levels accepted by SetVerbose.
const (
	MinVerbose = 0
	MaxVerbose = 2
)

// SetVerbose sets the amount of progress messages that are logged.
// Level 0 only logs warnings, level 1 logs the main processing steps
// and level 2 logs every step. Levels outside of [0, 2] are clamped.
func SetVerbose(level int) {
	switch {
	case level <= MinVerbose:
		Log.SetLevel(logrus.WarnLevel)
	case level == 1:
		Log.SetLevel(logrus.InfoLevel)
	default:
		Log.SetLevel(logrus.DebugLevel)
	}
}
