package subtitles

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"kielo/internal/fileutil"
)

// Extension is the file extension for archived subtitle documents.
const Extension = ".ass"

const headerTemplate = `[Script Info]
Title: Auto-generated Subtitles
ScriptType: v4.00+
WrapStyle: 0
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: %s,Roboto,12,&H00ea72ac,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,1,0,2,10,10,25,1
Style: %s,Roboto,12,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,1,0,2,10,10,25,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`

// Segment is one timed piece of source-language speech.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Event is one dialogue line in the document.
type Event struct {
	Start float64
	End   float64
	Style string
	Text  string
}

// Document is an ordered dual-track subtitle document.
type Document struct {
	SourceStyle string
	TargetStyle string
	Events      []Event
}

// Compose pairs transcript segments with their translations into a document
// holding exactly two events per segment, source style first, both sharing
// the segment's start and end. A missing translation becomes an empty target
// line rather than an error.
func Compose(segments []Segment, translations []string, sourceStyle, targetStyle string) *Document {
	doc := &Document{
		SourceStyle: sourceStyle,
		TargetStyle: targetStyle,
		Events:      make([]Event, 0, len(segments)*2),
	}
	for i, seg := range segments {
		translated := ""
		if i < len(translations) {
			translated = translations[i]
		}
		doc.Events = append(doc.Events,
			Event{Start: seg.Start, End: seg.End, Style: sourceStyle, Text: flatten(seg.Text)},
			Event{Start: seg.Start, End: seg.End, Style: targetStyle, Text: flatten(translated)},
		)
	}
	return doc
}

// Render produces the full document text.
func (d *Document) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, headerTemplate, d.SourceStyle, d.TargetStyle)
	for _, event := range d.Events {
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,%s,,0,0,0,,%s\n",
			FormatTimestamp(event.Start), FormatTimestamp(event.End), event.Style, event.Text)
	}
	return b.String()
}

// WriteFile writes the document atomically via a temporary sibling.
func (d *Document) WriteFile(path string) error {
	tmp := fileutil.TempSibling(path)
	if err := os.WriteFile(tmp, []byte(d.Render()), 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write subtitle document: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize subtitle document: %w", err)
	}
	return nil
}

// PathFor returns the archival path of an item's subtitle document: the
// item's base name with the subtitle extension, inside dir.
func PathFor(dir, videoPath string) string {
	base := filepath.Base(videoPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+Extension)
}

// CountDialogueLines counts the dialogue events in a stored document.
func CountDialogueLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read subtitle document: %w", err)
	}
	count := 0
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "Dialogue: ") {
			count++
		}
	}
	return count, nil
}

func flatten(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
}
