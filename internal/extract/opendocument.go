package extract

import (
	"fmt"
	"regexp"
)

const odfContentPath = "content.xml"

// odfText matches the innermost text:p, text:h and text:span elements.
var odfText = regexp.MustCompile(`<text:(?:p|h|span)[^>]*>([^<]+)</text:(?:p|h|span)>`)

var (
	odpPageStart  = regexp.MustCompile(`<draw:page[\s>]`)
	odsTableStart = regexp.MustCompile(`<table:table[\s>]`)
)

func readODFContent(content []byte, format string) (string, error) {
	zr, err := openZip(content, format)
	if err != nil {
		return "", err
	}
	data, err := readZipEntry(zr, odfContentPath)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", format, err)
	}
	if data == nil {
		return "", fmt.Errorf("extract %s: %s not found", format, odfContentPath)
	}
	return string(data), nil
}

// splitPages cuts xml at every start match; text before the first match is ignored
// unless there is no match at all.
func splitPages(xml string, start *regexp.Regexp) []Page {
	locs := start.FindAllStringIndex(xml, -1)
	if len(locs) == 0 {
		return singlePage(joinMatches(odfText, xml))
	}
	pages := make([]Page, 0, len(locs))
	for i, loc := range locs {
		end := len(xml)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		pages = append(pages, Page{Number: i + 1, Text: joinMatches(odfText, xml[loc[0]:end])})
	}
	return pages
}

// extractODP returns one page per draw:page.
func extractODP(content []byte) ([]Page, error) {
	xml, err := readODFContent(content, "ODP")
	if err != nil {
		return nil, err
	}
	return splitPages(xml, odpPageStart), nil
}

// extractODS returns one page per table:table (sheet).
func extractODS(content []byte) ([]Page, error) {
	xml, err := readODFContent(content, "ODS")
	if err != nil {
		return nil, err
	}
	return splitPages(xml, odsTableStart), nil
}
