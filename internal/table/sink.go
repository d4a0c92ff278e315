package table

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/papapumpkin/usecase/internal/model"
)

// MaxSheetTitle is the first title length, in characters, that is rejected
// as a worksheet name.
const MaxSheetTitle = 31

// invalidSheetChars cannot appear in a worksheet name.
const invalidSheetChars = `:\/?*[]`

// Sentinel errors for sheet-name validation.
var (
	// ErrTitleTooLong indicates one or more scenario-set titles cannot be worksheet names.
	ErrTitleTooLong = errors.New("scenario set title too long for a worksheet name")
	// ErrDuplicateTitle indicates two scenario sets would map to the same worksheet.
	ErrDuplicateTitle = errors.New("duplicate scenario set title")
	// ErrInvalidSheetName indicates a title contains a character worksheet names forbid.
	ErrInvalidSheetName = errors.New("scenario set title contains a character not allowed in worksheet names")
	// ErrBadTemplate indicates the workbook template lacks the summary and pattern sheets.
	ErrBadTemplate = errors.New("workbook template must contain a summary sheet and a pattern sheet")
)

// Sink serializes a catalog into one or more files under dir. It returns the
// paths written so far even when it fails, so callers can clean them up.
type Sink interface {
	Write(c *model.Catalog, dir string) ([]string, error)
}

// CSVFileName returns the delimited-text file name for one scenario set.
func CSVFileName(catalogTitle, setTitle string) string {
	return model.SafeFileName(catalogTitle + "-TestSuite-" + setTitle + ".csv")
}

// XLSXFileName returns the spreadsheet file name for a catalog.
func XLSXFileName(catalogTitle string) string {
	return model.SafeFileName(catalogTitle + "-TestSuite.xlsx")
}

// CheckSheetTitles validates every scenario-set title as a worksheet name
// before any output exists. All over-long titles are reported together.
func CheckSheetTitles(c *model.Catalog) error {
	sets := c.ScenarioSets()

	var tooLong []string
	for _, set := range sets {
		if utf8.RuneCountInString(set.Title()) >= MaxSheetTitle {
			tooLong = append(tooLong, set.Title())
		}
	}
	if len(tooLong) > 0 {
		return fmt.Errorf("%w (%d or more characters):\n\t%s", ErrTitleTooLong, MaxSheetTitle, strings.Join(tooLong, "\n\t"))
	}

	seen := make(map[string]string)
	for _, set := range sets {
		title := set.Title()
		if strings.ContainsAny(title, invalidSheetChars) {
			return fmt.Errorf("%w: %q", ErrInvalidSheetName, title)
		}
		key := strings.ToLower(title)
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("%w: %q and %q", ErrDuplicateTitle, prev, title)
		}
		seen[key] = title
	}
	return nil
}
