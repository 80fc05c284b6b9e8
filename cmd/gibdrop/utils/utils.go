package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gibdrop/internal/discovery"
	"gibdrop/lib/textutil"

	"github.com/jedib0t/go-pretty/v6/table"
)

func NewTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("Jan 02 15:04")
}

// CampaignTable renders campaigns numbered from 1, selected ones are marked
// when `selection` is given.
func CampaignTable(campaigns []discovery.Campaign, selection *discovery.Selection) table.Writer {
	t := NewTable()
	t.AppendHeader(table.Row{"#", "", "Campaign", "Game", "Source", "Status", "Streamers", "Ends"})
	for i := range campaigns {
		c := &campaigns[i]

		mark := ""
		if selection != nil && selection.Contains(c) {
			mark = "*"
		}
		streamers := fmt.Sprintf("%d", len(c.Streamers))
		if c.FetchedCount > len(c.Streamers) {
			streamers = fmt.Sprintf("top %d of %d", len(c.Streamers), c.FetchedCount)
		}
		if c.SkippedNonASCII > 0 {
			streamers += fmt.Sprintf(" (%d skipped)", c.SkippedNonASCII)
		}

		t.AppendRow(table.Row{
			i + 1, mark, c.Name, c.Game, c.Source, c.Status, streamers, formatTime(c.EndAt),
		})
	}
	return t
}

// Prompt prints `question` and reads one trimmed line.
func Prompt(r *bufio.Reader, w io.Writer, question string) (string, error) {
	fmt.Fprint(w, question)
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a y/n question, anything but y or yes is a no.
func Confirm(r *bufio.Reader, w io.Writer) func(question string) bool {
	return func(question string) bool {
		answer, err := Prompt(r, w, question+" (y/n): ")
		if err != nil {
			return false
		}
		answer = strings.ToLower(answer)
		return answer == "y" || answer == "yes"
	}
}

const nameMatchThreshold = 0.85

// ResolveChoices maps operator input to 0-based indices into `names`. Input is
// either a list of 1-based numbers separated by commas or spaces, or the
// (approximate) name of a single entry. Repeated numbers count once.
func ResolveChoices(input string, names []string) ([]int, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("nothing entered")
	}

	numbers := make([]int, 0, len(fields))
	seen := map[int]bool{}
	for _, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil {
			numbers = nil
			break
		}
		if n < 1 || n > len(names) {
			return nil, fmt.Errorf("%d is not between 1 and %d", n, len(names))
		}
		// a repeated number would toggle the same campaign back off
		if seen[n] {
			continue
		}
		seen[n] = true
		numbers = append(numbers, n-1)
	}
	if numbers != nil {
		return numbers, nil
	}

	idx, _ := textutil.BestMatch(input, names, nameMatchThreshold)
	if idx < 0 {
		return nil, fmt.Errorf("no campaign matches %q", input)
	}
	return []int{idx}, nil
}

// SplitNames splits comma separated operator input into trimmed, non-empty names.
func SplitNames(args []string) []string {
	names := []string{}
	for _, arg := range args {
		for _, name := range strings.Split(arg, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}
