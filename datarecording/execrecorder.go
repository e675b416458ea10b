package datarecording

import (
	"os"
	"strings"
	"time"
)

const execTableName = "exec_info"

type execInfo struct {
	Property string
	Value    string
}

// ExecRecorder records how the program was run: the command line, the
// working directory, free-form properties and the start and end time.
type ExecRecorder struct {
	recorder DataRecorder
	entries  []execInfo
	now      func() time.Time
}

// NewExecRecorder creates an ExecRecorder that writes into the exec_info
// table of the given recorder.
func NewExecRecorder(recorder DataRecorder) *ExecRecorder {
	recorder.CreateTable(execTableName, execInfo{})

	return &ExecRecorder{
		recorder: recorder,
		now:      time.Now,
	}
}

// Start logs the start of the current execution.
func (e *ExecRecorder) Start() {
	e.add("Start Time", e.timestamp())
	e.add("Command", strings.Join(os.Args, " "))

	cwd, err := os.Getwd()
	if err == nil {
		e.add("Working Directory", cwd)
	}
}

// AddProperty records an extra property, such as a configuration value.
func (e *ExecRecorder) AddProperty(name, value string) {
	e.add(name, value)
}

// End writes all the properties along with the end time.
func (e *ExecRecorder) End() {
	e.add("End Time", e.timestamp())

	for _, entry := range e.entries {
		e.recorder.InsertData(execTableName, entry)
	}

	e.entries = nil

	e.recorder.Flush()
}

func (e *ExecRecorder) add(property, value string) {
	e.entries = append(e.entries, execInfo{Property: property, Value: value})
}

func (e *ExecRecorder) timestamp() string {
	return e.now().Format("2006-01-02 15:04:05.000000000")
}
