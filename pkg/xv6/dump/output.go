// Copyright 2026 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dump

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Report is a built report that can be rendered.
type Report interface {
	// WriteText renders the report in the classic line format.
	WriteText(w io.Writer) error
}

type outputFunc func(io.Writer, Report) error

// A map of output format names to output functions.
var outputMap = map[string]outputFunc{
	"text": outputText,
	"yaml": outputYAML,
}

// Formats returns the supported output format names.
func Formats() []string {
	names := make([]string, 0, len(outputMap))
	for name := range outputMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckFormat returns an error if format is not supported.
func CheckFormat(format string) error {
	if _, ok := outputMap[format]; !ok {
		return fmt.Errorf("unsupported output format %q, want one of %s", format, strings.Join(Formats(), ", "))
	}
	return nil
}

// Write renders r to w in the named format.
func Write(w io.Writer, r Report, format string) error {
	if err := CheckFormat(format); err != nil {
		return err
	}
	return outputMap[format](w, r)
}

func outputText(w io.Writer, r Report) error {
	return r.WriteText(w)
}

// outputYAML encodes r with two space indentation.
func outputYAML(w io.Writer, r Report) error {
	e := yaml.NewEncoder(w)
	e.SetIndent(2)
	if err := e.Encode(r); err != nil {
		return fmt.Errorf("marshaling to YAML: %w", err)
	}
	return e.Close()
}
