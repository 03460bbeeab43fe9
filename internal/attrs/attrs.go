// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package attrs

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"

	"github.com/staranto/lessonctl/internal/config"
)

// Now is the reference point for humanized times.
var Now = time.Now

var lengthRegex = regexp.MustCompile(`-?\d+`)

// Attr represents each of the keys to be included in the output. These are
// gjson paths into one row of the API payload, thus the name.
type Attr struct {
	// The gjson path to extract from each row.
	Key string
	// Should this Attr be included in output or is it just
	// intended for filtering and sorting?
	Include bool
	// The key to use in the output. This is also the column title when
	// output=text.
	OutputKey string
	// Transformation spec to apply to the output value.
	TransformSpec string
}

// Transform applies the TransformSpec to value. Strings support case, length,
// local time and humanized time. Numbers support rounding to a number of
// decimal places.
func (a *Attr) Transform(value interface{}) interface{} {
	if num, ok := value.(float64); ok {
		return a.transformNumber(num)
	}

	result, ok := value.(string)
	if !ok {
		return value
	}

	// Timestamps can be shown relative to now, which wins over a local
	// conversion.
	if strings.ContainsAny(a.TransformSpec, "hH") {
		if t, err := time.Parse(time.RFC3339, result); err == nil {
			return humanize.RelTime(t, Now(), "ago", "from now")
		}
		log.Debugf("not a timestamp, skipping humanize: %s", result)
	}

	// Convert UTC time to local.
	if strings.ContainsAny(a.TransformSpec, "tT") {

		// See if there is a timezone in the config file. If there's not, look
		// for a plain TZ env variable.
		tz, _ := config.GetString("timezone", "")
		if tz == "" {
			tz = os.Getenv("TZ")
		}

		// We're only going to convert if we've specifically told what TZ to use.
		// If we haven't, we'll just use the value as is.
		if tz != "" {
			loc, err := time.LoadLocation(tz)
			if err == nil {
				t, err := time.Parse(time.RFC3339, result)
				if err == nil {
					result = t.In(loc).Format("2006-01-02T15:04:05MST")
				} else {
					log.Error("failed to parse time: " + result)
				}
			}
		}
	}

	// We need to know which case transformation appears last. This covers the
	// case where there has been a global case transformation prepended to the
	// attrs transformation and, thus, allows the attr's to carry more weight.
	// IOW...  --attrs '*::U,username::l' will be lower case.
	lastL := strings.LastIndexAny(a.TransformSpec, "lL")
	lastU := strings.LastIndexAny(a.TransformSpec, "uU")

	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	// Is it a length-based transformation? Same logic as above re: case. The
	// last length wins so a specific attr overrides a global one. Lengths count
	// runes since names are frequently Cyrillic.
	if l, ok := a.length(); ok {
		runes := []rune(result)
		abs := int(math.Abs(float64(l)))
		if len(runes) > abs {
			if l < 0 {
				lr := abs/2 - 1
				if lr < 1 {
					lr = 1
				}
				result = string(runes[:lr]) + ".." + string(runes[len(runes)-lr:])
			} else {
				result = string(runes[:l])
			}
		}
	}

	return result
}

// transformNumber rounds to the last length in the spec, read as decimal
// places.
func (a *Attr) transformNumber(num float64) interface{} {
	places, ok := a.length()
	if !ok || places < 0 {
		return num
	}
	pow := math.Pow(10, float64(places))
	return math.Round(num*pow) / pow
}

func (a *Attr) length() (int, bool) {
	if a.TransformSpec == "" {
		return 0, false
	}
	match := lengthRegex.FindAllString(a.TransformSpec, -1)
	if len(match) == 0 {
		return 0, false
	}
	l, err := strconv.Atoi(match[len(match)-1])
	if err != nil {
		return 0, false
	}
	return l, true
}

type AttrList []Attr

// Return a string representation of the AttrList. This should match the
// format of the original --attrs flag.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		result = append(result, fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Set parses each spec from the --attrs flag and adds it to the AttrList.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	const (
		jsonIdx = iota
		outputIdx
		transformIdx
	)

	// There are three : delimited fields in each spec. The first is the gjson
	// path to extract. The second is the key to use in the output. The third
	// is the transformation spec to apply to the output value. The latter two
	// are optional. The output key defaults to the last section of the path.
	specs := strings.Split(value, ",")
specloop:
	for _, spec := range specs {
		attr := Attr{
			Include: true,
		}

		fields := strings.Split(spec, ":")

		// The first field is the path to extract from the JSON payload. If it
		// begins with a !, it is excluded from the output.
		attr.Key = strings.TrimSpace(fields[jsonIdx])
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = attr.Key[1:]
		}
		attr.Key = strings.TrimPrefix(attr.Key, ".")

		if attr.Key == "" {
			return fmt.Errorf("empty attribute in %q", spec)
		}

		if attr.Key == "*" {
			attr.Include = false
		}

		if len(fields) == 1 || fields[outputIdx] == "" {
			segments := strings.Split(attr.Key, ".")
			attr.OutputKey = segments[len(segments)-1]
		} else {
			attr.OutputKey = strings.TrimSpace(fields[outputIdx])
		}

		if len(fields) > transformIdx {
			attr.TransformSpec = strings.TrimSpace(fields[transformIdx])
		}

		// If the attr already exists in the list (because it's one of the
		// command's defaults or the user double-entered it) just apply the
		// OutputKey, Include and TransformSpec to the existing Attr.
		for i := range *a {
			if (*a)[i].Key == attr.Key || (*a)[i].OutputKey == attr.Key {
				(*a)[i].Include = attr.Include
				if len(fields) > outputIdx && fields[outputIdx] != "" {
					(*a)[i].OutputKey = attr.OutputKey
				}
				(*a)[i].TransformSpec = attr.TransformSpec
				continue specloop
			}
		}

		*a = append(*a, attr)
	}

	return nil
}

// SetGlobalTransformSpec inserts a global transform spec into the front of all
// attrs in the list.
func (a *AttrList) SetGlobalTransformSpec() error {
	spec := ""

	// Find the global transform spec. If there is more than one, we're not
	// dealing with it and just taking the first.
	for i := range *a {
		if (*a)[i].Key == "*" {
			spec = (*a)[i].TransformSpec
			break
		}
	}

	if spec == "" {
		return nil
	}

	for i := range *a {
		if (*a)[i].Key == "*" {
			continue
		}
		(*a)[i].TransformSpec = spec + "," + (*a)[i].TransformSpec
	}

	return nil
}

// Included returns the attrs that are rendered, in order.
func (a AttrList) Included() AttrList {
	out := make(AttrList, 0, len(a))
	for _, attr := range a {
		if attr.Include && attr.Key != "*" {
			out = append(out, attr)
		}
	}
	return out
}

func (a *AttrList) Type() string {
	return "list"
}
