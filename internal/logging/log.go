// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package logging builds the process logger. Writes human-readable lines to stdout,
// and optionally to a log file as well.
package logging

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Placeholder for deriving the log file name from the output file name
const Auto = "%auto"

// A logger writing to the console, and optionally also to a file
type Log struct {
	zerolog.Logger
	file    *os.File
	fileBuf *bufio.Writer
}

// Creates a console logger writing to out at the given level
func New(out io.Writer, level zerolog.Level) *Log {
	return &Log{Logger: newLogger(consoleWriter(out, false), level)}
}

// Creates a logger that discards all output, for tests and library use
func Nop() *Log {
	return &Log{Logger: zerolog.Nop()}
}

func consoleWriter(out io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: out, NoColor: noColor, TimeFormat: time.TimeOnly}
}

// Operators log from concurrent goroutines, so writes are serialized
func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.SyncWriter(w)).Level(level).With().Timestamp().Logger()
}

// Enables logging to the given file in addition to out. Truncates the file
func (l *Log) AlsoToFile(out io.Writer, fileName string) error {
	if err := l.Close(); err != nil {
		return err
	}
	f, err := os.OpenFile(fileName, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	if err != nil {
		return err
	}
	l.file, l.fileBuf = f, bufio.NewWriter(f)
	multi := zerolog.MultiLevelWriter(consoleWriter(out, false), consoleWriter(l.fileBuf, true))
	l.Logger = newLogger(multi, l.GetLevel())
	return nil
}

// Flushes and closes the log file, if any
func (l *Log) Close() error {
	if l.file == nil {
		return nil
	}
	if err := l.fileBuf.Flush(); err != nil {
		return err
	}
	err := l.file.Close()
	l.file, l.fileBuf = nil, nil
	return err
}

// Logs the message at fatal level, closes the log file and exits with status 1
func (l *Log) Fatalf(format string, args ...interface{}) {
	l.Error().Msgf(format, args...)
	l.Close()
	os.Exit(1)
}

// Resolves the log file name. Auto replaces the suffix of the output file with .log,
// or disables file logging if there is no output file
func FileName(logFlag, outFlag string) string {
	if logFlag != Auto {
		return logFlag
	}
	if outFlag == "" {
		return ""
	}
	out := strings.ReplaceAll(outFlag, "%d", "")
	return strings.TrimSuffix(out, filepath.Ext(out)) + ".log"
}
