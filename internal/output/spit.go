// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"
	"strconv"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"

	"github.com/staranto/lessonctl/internal/attrs"
	"github.com/staranto/lessonctl/internal/config"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatRaw  = "raw"
)

// Formats lists every accepted --output value.
var Formats = []string{FormatText, FormatJSON, FormatYAML, FormatRaw}

// ErrInvalidPayload is returned when the document to render is not JSON.
var ErrInvalidPayload = errors.New("payload is not valid JSON")

// Options are the output flags shared by every query command.
type Options struct {
	Format string
	Filter string
	Sort   string
	Titles bool
	Color  bool
	Local  bool
}

// OptionsFromCommand reads the output flags from cmd. Flags a command does
// not define read as their zero value.
func OptionsFromCommand(cmd *cli.Command) Options {
	return Options{
		Format: cmd.String("output"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
		Titles: cmd.Bool("titles"),
		Color:  cmd.Bool("color"),
		Local:  cmd.Bool("local"),
	}
}

// SliceDiceSpit renders raw per the command's output flags.
func SliceDiceSpit(raw []byte,
	al attrs.AttrList,
	cmd *cli.Command,
	parent string,
	w io.Writer) error {
	return Spit(raw, al, OptionsFromCommand(cmd), parent, w)
}

// Spit orchestrates filtering, transforming, sorting and rendering of a JSON
// document. parent, when set, is the gjson path of the rows inside raw. A
// single object is rendered as a one-row dataset.
func Spit(raw []byte, al attrs.AttrList, opts Options, parent string, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}

	// If raw, just dump it and go home.
	if opts.Format == FormatRaw {
		_, err := w.Write(raw)
		if err == nil && len(raw) > 0 && raw[len(raw)-1] != '\n' {
			_, err = io.WriteString(w, "\n")
		}
		return err
	}

	if !gjson.ValidBytes(raw) {
		return ErrInvalidPayload
	}

	fullDataset := gjson.ParseBytes(raw)
	if parent != "" {
		fullDataset = fullDataset.Get(parent)
	}

	// Work on a copy so the caller's defaults are never mutated.
	al = append(attrs.AttrList(nil), al...)
	if err := al.SetGlobalTransformSpec(); err != nil {
		return err
	}

	// Filter out the rows we don't want. Do it here so that the following
	// processes are working on a smaller dataset.
	filteredDataset := FilterDataset(fullDataset, al, opts.Filter)

	if opts.Local {
		for a := range al {
			al[a].TransformSpec += "t"
		}
	}

	for _, row := range filteredDataset {
		for _, attr := range al {
			if attr.Key != "*" && attr.TransformSpec != "" {
				row[attr.OutputKey] = attr.Transform(row[attr.OutputKey])
			}
		}
	}

	SortDataset(filteredDataset, opts.Sort)
	included := al.Included()

	switch opts.Format {
	case FormatJSON:
		rows := make([]map[string]interface{}, 0, len(filteredDataset))
		for _, row := range filteredDataset {
			out := make(map[string]interface{}, len(included))
			for _, attr := range included {
				out[attr.OutputKey] = row[attr.OutputKey]
			}
			rows = append(rows, out)
		}
		b, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err

	case FormatYAML:
		// MapSlice keeps the attrs' column order.
		rows := make([]yaml.MapSlice, 0, len(filteredDataset))
		for _, row := range filteredDataset {
			ms := make(yaml.MapSlice, 0, len(included))
			for _, attr := range included {
				ms = append(ms, yaml.MapItem{Key: attr.OutputKey, Value: row[attr.OutputKey]})
			}
			rows = append(rows, ms)
		}
		b, err := yaml.Marshal(rows)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err = w.Write(b)
		return err

	default:
		TableWriter(filteredDataset, included, opts, w)
		return nil
	}
}

// TableWriter renders the result set in a tabular form honoring color,
// titles and padding options.
func TableWriter(
	resultSet []map[string]interface{},
	al attrs.AttrList,
	opts Options,
	w io.Writer) {

	if len(resultSet) == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if opts.Color {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(evenColor))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(oddColor))
	}

	pad, _ := config.GetInt("padding", 0)

	var rows [][]string
	for _, result := range resultSet {
		row := make([]string, 0, len(al))
		for _, attr := range al {
			if !attr.Include {
				continue
			}
			row = append(row, InterfaceToString(result[attr.OutputKey], "-"))
		}
		rows = append(rows, row)
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Headers().
		Rows(rows...)

	if opts.Titles {
		var headers []string
		for _, attr := range al {
			if attr.Include {
				headers = append(headers, attr.OutputKey)
			}
		}

		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(headers...).BorderHeader(false)
	}
	fmt.Fprintln(w, t)
}

// DumpExamples renders a table of example command usages.
func DumpExamples(w io.Writer, examples [][2]string) {
	if len(examples) == 0 {
		return
	}
	var rows [][]string
	for _, ex := range examples {
		rows = append(rows, []string{ex[0], ex[1]})
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		Headers("Command", "Description").
		BorderHeader(false).
		Rows(rows...)

	fmt.Fprintln(w, t)
}

// getColors returns configured color values for table rendering.
func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(fmt.Sprintf("%s.title", key), "#f6be00")
	even, _ = config.GetString(fmt.Sprintf("%s.even", key), "#ffffff")
	odd, _ = config.GetString(fmt.Sprintf("%s.odd", key), "#00c8f0")
	return
}

// InterfaceToString converts supported primitive or composite values to a
// string. A custom empty value may be provided for nil and "".
func InterfaceToString(value interface{}, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	if value == nil {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		if value == "" {
			return emptyValue[0]
		}
		return value
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		// Percentages read best with at most two decimals.
		return strconv.FormatFloat(math.Round(value*100)/100, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		rv := reflect.ValueOf(value)
		if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map) && rv.Len() == 0 {
			return emptyValue[0]
		}
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			log.Debugf("InterfaceToString: %v", err)
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}
