package channel

import (
	"strings"

	"github.com/hexastack/slackbridge/pkg/message"
)

// ChunkConfig controls how outbound text is split when it exceeds a
// platform limit. Slack caps chat.postMessage text well below what an
// engine reply can carry, so long replies go out as a sequence.
type ChunkConfig struct {
	// MaxLength is the maximum number of bytes per chunk.
	// Zero or negative disables splitting.
	MaxLength int

	// PreserveBlocks keeps fenced code blocks (``` ... ```) intact when
	// they would otherwise straddle a chunk boundary, as long as the
	// block itself still fits within the limit.
	PreserveBlocks bool
}

// SplitMessage splits msg into messages that each respect cfg.MaxLength.
// A message that already fits comes back as a single-element slice. The
// response URL survives only on the first chunk; Slack replaces the
// original message once per response URL, so later chunks must post
// normally.
func SplitMessage(msg message.OutboundMessage, cfg ChunkConfig) []message.OutboundMessage {
	if cfg.MaxLength <= 0 || len(msg.Text) <= cfg.MaxLength {
		return []message.OutboundMessage{msg}
	}

	chunks := splitText(msg.Text, cfg)

	out := make([]message.OutboundMessage, 0, len(chunks))
	for i, text := range chunks {
		m := msg
		m.Text = text
		if i > 0 {
			m.ResponseURL = ""
			m.ReplaceOriginal = false
		}
		out = append(out, m)
	}
	return out
}

// splitText breaks text at line boundaries into chunks of at most
// cfg.MaxLength bytes, force-splitting single lines that are longer than
// the limit on their own.
func splitText(text string, cfg ChunkConfig) []string {
	s := splitter{cfg: cfg}
	for line := range strings.SplitSeq(text, "\n") {
		s.feed(line)
	}
	s.flush()
	return s.chunks
}

type splitter struct {
	cfg     ChunkConfig
	chunks  []string
	current strings.Builder
	inBlock bool
}

func (s *splitter) feed(line string) {
	withNewline := line + "\n"
	isFence := strings.HasPrefix(strings.TrimSpace(line), "```")

	// The closing fence still counts as inside its block, so remember the
	// state before toggling.
	wasInBlock := s.inBlock
	if isFence {
		s.inBlock = !s.inBlock
	}

	if s.current.Len()+len(withNewline) > s.cfg.MaxLength {
		// Let a code block overflow its chunk rather than split it, up to
		// twice the limit. Past that the block cannot fit anywhere and
		// splitting it is the lesser evil.
		closingFence := isFence && !s.inBlock
		if s.cfg.PreserveBlocks && (wasInBlock || closingFence) && s.current.Len() < s.cfg.MaxLength*2 {
			s.current.WriteString(withNewline)
			return
		}

		s.flush()

		if len(withNewline) > s.cfg.MaxLength {
			s.chunks = append(s.chunks, forceSplit(line, s.cfg.MaxLength)...)
			return
		}
	}

	s.current.WriteString(withNewline)
}

func (s *splitter) flush() {
	if s.current.Len() == 0 {
		return
	}
	s.chunks = append(s.chunks, strings.TrimRight(s.current.String(), "\n"))
	s.current.Reset()
}

// forceSplit breaks one overlong line into maxLen-byte pieces.
func forceSplit(line string, maxLen int) []string {
	var parts []string
	for len(line) > maxLen {
		parts = append(parts, line[:maxLen])
		line = line[maxLen:]
	}
	if len(line) > 0 {
		parts = append(parts, line)
	}
	return parts
}
