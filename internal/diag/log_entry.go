package diag

import (
	"fmt"
	"time"
)

// Level represents the severity of a log entry.
type Level int

const (
	LevelNone Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "NONE"
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// Stage identifies the pipeline component that produced a log entry.
type Stage string

const (
	StageImageIO    Stage = "imageio"
	StageStaff      Stage = "staff"
	StageLayout     Stage = "layout"
	StageSymbols    Stage = "symbols"
	StageNeural     Stage = "neural"
	StagePitch      Stage = "pitch"
	StageAssembler  Stage = "assembler"
	StageSF2        Stage = "sf2"
	StageSynth      Stage = "synth"
	StageAudio      Stage = "audio"
	StagePipeline   Stage = "pipeline"
)

// Entry is a single log record.
type Entry struct {
	Timestamp time.Time
	Stage     Stage
	Level     Level
	RunID     string
	Message   string
	Data      map[string]any
}

func (e Entry) String() string {
	if e.RunID != "" {
		return fmt.Sprintf("%s [%s] %s (run=%s) %s", e.Timestamp.Format(time.RFC3339Nano), e.Level, e.Stage, e.RunID, e.Message)
	}
	return fmt.Sprintf("%s [%s] %s %s", e.Timestamp.Format(time.RFC3339Nano), e.Level, e.Stage, e.Message)
}
