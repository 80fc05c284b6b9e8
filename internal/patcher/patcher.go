package patcher

import (
	"errors"
	"strings"
)

const (
	CallSiteToken = "twitch_miner.mine("
	ImportAnchor  = "from TwitchChannelPointsMiner.classes.entities.Streamer import Streamer, StreamerSettings"
	LoaderMarker  = "# gibdrop: dynamic streamer loader"

	// StreamerVariable is defined by the loader block and consumed by the call template.
	StreamerVariable = "streamer_objects"
)

const callTemplate = `twitch_miner.mine(
    streamer_objects,                   # Array of streamers (order = priority)
    followers=False,                    # Automatic download the list of your followers
    followers_order=FollowersOrder.ASC  # Sort the followers list by follow date. ASC or DESC
)`

const loaderTemplate = LoaderMarker + `
import os
import re


def gibdrop_load_streamers(pointer="active_streamers.txt"):
    base = os.path.dirname(os.path.abspath(__file__))
    try:
        with open(os.path.join(base, pointer), encoding="utf-8") as f:
            target = f.read().strip()
    except FileNotFoundError:
        return []
    if not target:
        return []

    names = []
    try:
        with open(os.path.join(base, target), encoding="utf-8") as f:
            for line in f:
                line = line.strip()
                legacy = re.match(r'^Streamer\("([^"]+)"\),?$', line)
                if legacy:
                    line = legacy.group(1)
                if line:
                    names.append(line)
    except FileNotFoundError:
        return []
    return names


streamer_objects = [Streamer(name) for name in gibdrop_load_streamers()]
# gibdrop: end of dynamic streamer loader
`

type Result struct {
	Text string
	// false when the call-site was missing, unbalanced or already patched
	CallSiteReplaced bool
	LoaderInserted   bool
	// ErrNoCallSite, ErrUnbalancedParens and/or ErrNoInsertionAnchor
	Problems []error
}

// Err joins every problem encountered, nil on a clean patch.
func (r Result) Err() error {
	return errors.Join(r.Problems...)
}

func (r Result) Has(target error) bool {
	for _, problem := range r.Problems {
		if errors.Is(problem, target) {
			return true
		}
	}
	return false
}

// Apply rewrites the last miner call of the script to take the dynamically
// loaded streamer list, and inserts the loader below the Streamer import if the
// loader's marker is not already present. Applying to its own output changes
// nothing.
func Apply(text string) Result {
	result := Result{Text: text}

	site, err := newScanner(CallSiteToken).scan(text)
	switch {
	case err != nil:
		result.Problems = append(result.Problems, err)
	case text[site.start:site.end] == callTemplate:
	default:
		result.Text = text[:site.start] + callTemplate + text[site.end:]
		result.CallSiteReplaced = true
	}

	if strings.Contains(result.Text, LoaderMarker) {
		return result
	}

	text, ok := insertAfterLine(result.Text, ImportAnchor, loaderTemplate)
	if !ok {
		result.Problems = append(result.Problems, ErrNoInsertionAnchor)
		return result
	}
	result.Text = text
	result.LoaderInserted = true
	return result
}

// insertAfterLine inserts `block` at the start of the line following the
// first line containing `anchor`.
func insertAfterLine(text, anchor, block string) (string, bool) {
	idx := strings.Index(text, anchor)
	if idx < 0 {
		return text, false
	}

	lineEnd := strings.IndexByte(text[idx:], '\n')
	if lineEnd < 0 {
		return text + "\n" + block, true
	}
	at := idx + lineEnd + 1
	return text[:at] + block + text[at:], true
}
