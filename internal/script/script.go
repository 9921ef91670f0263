// Package script loads the narration script for a project and splits scene
// text into the sentence units caption alignment works on.
package script

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Scene is one narrative beat: its 1-based ordinal and the narration text for
// that beat. Scene order is the authoring order and is never re-sorted within
// the pipeline.
type Scene struct {
	Ordinal   int    `json:"ordinal"`
	Narration string `json:"narration"`
}

// Script is the parsed narration document for a project.
type Script struct {
	Title  string  `json:"title"`
	Scenes []Scene `json:"scenes"`
}

// rawScene mirrors the on-disk scene object. Authoring tools vary: some emit
// a numeric scene_number, others an identifier like "scene_07_main"; the
// narration text lives in either "narration" or "content".
type rawScene struct {
	SceneNumber *int   `json:"scene_number"`
	SceneID     string `json:"scene_id"`
	Narration   string `json:"narration"`
	Content     string `json:"content"`
}

type rawScript struct {
	Title  string     `json:"title"`
	Scenes []rawScene `json:"scenes"`
}

var (
	sceneIDRe       = regexp.MustCompile(`scene_(\d+)`)
	codeFenceOpenRe = regexp.MustCompile(`(?i)^\x60\x60\x60json\s*`)
	codeFenceEndRe  = regexp.MustCompile("\\s*\x60\x60\x60\\s*$")

	// Authoring tools embed silence/pause directions in the narration,
	// e.g. [무음 3초], [침묵] or [pause 1.5]. They control pacing in the
	// authoring UI and must never reach the synthesizer or the captions.
	stageDirectionRe = regexp.MustCompile(`\[(?:무음|침묵|pause)\s*(?:\d+(?:\.\d+)?)?초?\]`)
)

// Load finds and parses the story document in a project directory. Any JSON
// file whose name contains "story" qualifies; the first match in lexical
// order is used. Scenes with ordinal 0 are intro markers and are dropped, as
// are scenes whose ordinal cannot be determined.
func Load(projectDir string) (*Script, error) {
	matches, err := filepath.Glob(filepath.Join(projectDir, "*story*.json"))
	if err != nil {
		return nil, fmt.Errorf("glob story file: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no story JSON found in %s", projectDir)
	}
	sort.Strings(matches)

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, fmt.Errorf("read story file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a story document. Documents produced by LLM tooling are
// sometimes wrapped in a markdown code fence, which is stripped first.
func Parse(data []byte) (*Script, error) {
	text := strings.TrimSpace(string(data))
	text = codeFenceOpenRe.ReplaceAllString(text, "")
	text = codeFenceEndRe.ReplaceAllString(text, "")

	var raw rawScript
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parse story JSON: %w", err)
	}

	doc := &Script{Title: strings.TrimSpace(raw.Title)}
	for _, rs := range raw.Scenes {
		ordinal, ok := sceneOrdinal(rs)
		if !ok || ordinal == 0 {
			continue
		}
		narration := strings.TrimSpace(rs.Narration)
		if narration == "" {
			narration = strings.TrimSpace(rs.Content)
		}
		narration = CleanNarration(narration)
		if narration == "" {
			continue
		}
		doc.Scenes = append(doc.Scenes, Scene{Ordinal: ordinal, Narration: narration})
	}

	if len(doc.Scenes) == 0 {
		return nil, fmt.Errorf("story document has no usable scenes")
	}

	sort.SliceStable(doc.Scenes, func(i, j int) bool {
		return doc.Scenes[i].Ordinal < doc.Scenes[j].Ordinal
	})
	return doc, nil
}

func sceneOrdinal(rs rawScene) (int, bool) {
	if rs.SceneNumber != nil {
		return *rs.SceneNumber, true
	}
	if m := sceneIDRe.FindStringSubmatch(rs.SceneID); m != nil {
		var ordinal int
		if _, err := fmt.Sscanf(m[1], "%d", &ordinal); err == nil {
			return ordinal, true
		}
	}
	return 0, false
}

// FullText joins all scene narrations with spaces, in scene order.
func (s *Script) FullText() string {
	parts := make([]string, 0, len(s.Scenes))
	for _, scene := range s.Scenes {
		parts = append(parts, scene.Narration)
	}
	return strings.Join(parts, " ")
}

// CleanNarration strips stage directions from narration text and collapses
// the whitespace they leave behind. A scene that is nothing but directions
// cleans down to the empty string.
func CleanNarration(text string) string {
	return collapseWhitespace(stageDirectionRe.ReplaceAllString(text, ""))
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
