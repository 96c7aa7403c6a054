package contradiction

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Document is one workpaper, filing section, or memo compared for
// cross-document consistency (spec §4 supplemented feature).
type Document struct {
	ID      string
	Title   string
	Content string
}

type documentConclusion struct {
	text       string
	documentID string
	title      string
}

// conclusionPatterns mirror the audit-workpaper conclusion headings the
// Python original scans for (contradiction_detector.py's
// detect_cross_document_contradictions).
var conclusionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)(?:Conclusion|Summary|Finding|Opinion|Assessment):\s*(.+?)(?:\n\n|$)`),
	regexp.MustCompile(`(?is)(?:We (?:conclude|find|determined) that)\s+(.+?)(?:\.|$)`),
	regexp.MustCompile(`(?is)(?:Based on (?:our|the) (?:review|analysis|procedures))[,:]?\s+(.+?)(?:\.|$)`),
}

// DetectCrossDocument compares the stated conclusions of two or more
// documents, flagging a CRITICAL finding when two highly similar
// conclusions from different documents negate each other or use
// opposing terms. A fourth, optional analyzer alongside the three
// Analyze runs within a single document.
func (d *Detector) DetectCrossDocument(ctx context.Context, documents []Document) ([]Finding, error) {
	if len(documents) < 2 {
		return nil, nil
	}

	var conclusions []documentConclusion
	for _, doc := range documents {
		for _, pattern := range conclusionPatterns {
			for _, m := range pattern.FindAllStringSubmatch(doc.Content, -1) {
				text := strings.TrimSpace(m[1])
				if len(text) <= 20 {
					continue
				}
				if len(text) > 500 {
					text = text[:500]
				}
				conclusions = append(conclusions, documentConclusion{
					text:       text,
					documentID: doc.ID,
					title:      doc.Title,
				})
			}
		}
	}
	if len(conclusions) < 2 {
		return nil, nil
	}

	texts := make([]string, len(conclusions))
	for i, c := range conclusions {
		texts[i] = c.text
	}
	vectors, err := d.embeddings.ComputeEmbeddings(ctx, texts)
	if err != nil {
		return nil, err
	}

	var findings []Finding
	for i := 0; i < len(conclusions); i++ {
		for j := i + 1; j < len(conclusions); j++ {
			if conclusions[i].documentID == conclusions[j].documentID {
				continue
			}
			if i >= len(vectors) || j >= len(vectors) {
				continue
			}
			similarity := cosineSimilarity(vectors[i], vectors[j])
			if similarity <= 0.7 {
				continue
			}

			negates := containsNegation(conclusions[i].text) != containsNegation(conclusions[j].text)
			opposes := opposingPair(conclusions[i].text, conclusions[j].text)
			if !negates && !opposes {
				continue
			}

			findings = append(findings, Finding{
				Analyzer: "cross_document",
				Severity: SeverityCritical,
				Detail: fmt.Sprintf("contradictory conclusions between %q and %q",
					conclusions[i].title, conclusions[j].title),
				SpanA: conclusions[i].text,
				SpanB: conclusions[j].text,
			})
		}
	}
	return findings, nil
}
