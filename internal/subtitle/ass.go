package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mgpai22/subplay/internal/failure"
)

const (
	sectionScriptInfo = "[Script Info]"
	sectionStyles     = "[V4+ Styles]"
	sectionEvents     = "[Events]"

	// Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
	minDialogueFields = 10

	defaultStylesBlock = sectionStyles + "\n" +
		"Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n" +
		"Style: Default,Microsoft YaHei,20,&H00FFFFFF,&H000000FF,&H00000000,&H80000000,0,0,0,0,100,100,0,0,1,2,0,2,10,10,10,1\n\n"
	defaultEventsBlock = "\n" + sectionEvents + "\n" +
		"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n"
)

var requiredASSSections = []string{sectionScriptInfo, sectionStyles, sectionEvents}

var dialogueTimesRegex = regexp.MustCompile(
	`(?m)^([ \t]*Dialogue:[ \t]*\d+),[ \t]*(\d{1,2}):(\d{1,2}):(\d{1,2})\.(\d{1,3})[ \t]*,[ \t]*(\d{1,2}):(\d{1,2}):(\d{1,2})\.(\d{1,3})[ \t]*,`,
)

// structural findings for an ASS document
type ASSReport struct {
	MissingSections   []string
	DialogueLines     int
	MalformedDialogue int
	SampleMalformed   string
}

// non-fatal problems; the renderer may still cope with them
func (r ASSReport) Warnings() []string {
	var warnings []string
	if len(r.MissingSections) > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"missing sections: %s",
			strings.Join(r.MissingSections, ", "),
		))
	}
	if r.MalformedDialogue > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"%d dialogue lines have fewer than %d fields (e.g. %q)",
			r.MalformedDialogue,
			minDialogueFields,
			r.SampleMalformed,
		))
	}
	return warnings
}

// ValidateASS checks the structure the ASS renderer relies on. Only empty
// content or the absence of any Dialogue line is an error; everything else
// ends up in the report's warnings.
func ValidateASS(content string) (ASSReport, error) {
	var report ASSReport

	if strings.TrimSpace(content) == "" {
		return report, failure.Newf(failure.ErrValidation, "ASS content is empty")
	}

	found := assSections(content)
	for _, section := range requiredASSSections {
		if !found[strings.ToLower(section)] {
			report.MissingSections = append(report.MissingSections, section)
		}
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "Dialogue:") {
			continue
		}
		report.DialogueLines++
		if strings.Count(trimmed, ",")+1 < minDialogueFields {
			report.MalformedDialogue++
			if report.SampleMalformed == "" {
				report.SampleMalformed = trimmed
			}
		}
	}

	if report.DialogueLines == 0 {
		if len(report.MissingSections) > 0 {
			return report, failure.Newf(
				failure.ErrValidation,
				"no Dialogue lines found (missing sections: %s)",
				strings.Join(report.MissingSections, ", "),
			)
		}
		return report, failure.Newf(failure.ErrValidation, "no Dialogue lines found")
	}

	return report, nil
}

// RepairASS fixes the common defects of exported ASS files: byte order
// mark, mixed line endings, missing section headers and sloppy dialogue
// timestamps. Content with neither script info nor styles is rejected.
func RepairASS(content, fileName string) (string, error) {
	content = NormalizeText(content)
	found := assSections(content)

	if !found[strings.ToLower(sectionScriptInfo)] &&
		!found[strings.ToLower(sectionStyles)] {
		return "", failure.Newf(
			failure.ErrValidation,
			"not an ASS document: neither %s nor %s present",
			sectionScriptInfo,
			sectionStyles,
		)
	}

	if !found[strings.ToLower(sectionScriptInfo)] {
		content = fmt.Sprintf(
			"%s\nTitle: %s\nScriptType: v4.00+\n\n",
			sectionScriptInfo,
			fileName,
		) + content
	}

	if !found[strings.ToLower(sectionStyles)] {
		if idx := sectionIndex(content, sectionEvents); idx >= 0 {
			content = content[:idx] + defaultStylesBlock + content[idx:]
		} else {
			content += "\n" + defaultStylesBlock
		}
	}

	if !found[strings.ToLower(sectionEvents)] {
		content += defaultEventsBlock
	}

	return dialogueTimesRegex.ReplaceAllStringFunc(content, normalizeDialogueTimes), nil
}

func normalizeDialogueTimes(match string) string {
	parts := dialogueTimesRegex.FindStringSubmatch(match)
	if len(parts) != 10 {
		return match
	}
	start := formatASSTimestamp(parts[2], parts[3], parts[4], parts[5])
	end := formatASSTimestamp(parts[6], parts[7], parts[8], parts[9])
	return fmt.Sprintf("%s,%s,%s,", strings.TrimSpace(parts[1]), start, end)
}

// H:MM:SS.CC; one fractional digit means tenths, three mean milliseconds
func formatASSTimestamp(hours, minutes, seconds, fraction string) string {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)
	f, _ := strconv.Atoi(fraction)

	var centis int
	switch len(fraction) {
	case 1:
		centis = f * 10
	case 3:
		centis = f / 10
	default:
		centis = f
	}

	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, centis)
}

// lowercase names of the [Section] headers present in content
func assSections(content string) map[string]bool {
	found := make(map[string]bool)
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			found[strings.ToLower(trimmed)] = true
		}
	}
	return found
}

// byte offset of the line holding header, or -1
func sectionIndex(content, header string) int {
	offset := 0
	for _, line := range strings.SplitAfter(content, "\n") {
		if strings.EqualFold(strings.TrimSpace(line), header) {
			return offset
		}
		offset += len(line)
	}
	return -1
}
