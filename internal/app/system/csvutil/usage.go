// internal/app/system/csvutil/usage.go
package csvutil

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/dalemusser/ltiusage/internal/app/store/queries/usagepages"
	"github.com/dalemusser/ltiusage/internal/app/system/labels"
)

// UsageHeader is the header row written by WriteUsage.
var UsageHeader = []string{
	labels.English.Group,
	labels.English.Course,
	labels.English.Name,
	labels.English.Visible,
	labels.English.Link,
	labels.English.ActivityID,
}

// WriteUsage writes one page of the usage report as CSV, header first.
// The group name repeats on every row so pages from several groups can be
// concatenated.
func WriteUsage(w io.Writer, res usagepages.PageResult, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(UsageHeader); err != nil {
			return err
		}
	}
	for _, r := range res.Rows {
		rec := []string{
			Cell(res.GroupName),
			Cell(r.Course),
			Cell(r.Name),
			labels.English.YesNo(r.Visible == 1),
			Cell(r.Link),
			strconv.FormatInt(r.ActivityRef, 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Cell neutralizes values a spreadsheet would evaluate as a formula.
func Cell(s string) string {
	if s == "" {
		return s
	}
	if strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}
