// Package format renders a GameComment into the Telegram-facing reply.
// Output uses Telegram's HTML parse mode, so site-supplied text must be
// entity-escaped before it lands in the template.
package format

import (
	"fmt"
	"strings"

	"wtgbot/internal/domain"
)

// NoCommentFallback is sent in place of an empty or missing comment body.
const NoCommentFallback = "Comment text not available"

// maxCommentRunes bounds how much comment text goes into one message.
const maxCommentRunes = 1000

// Reply is the rendered outgoing message. ImageURL is empty when the
// record carried no image; the transport then sends text only.
type Reply struct {
	Text     string
	ImageURL string
}

// Format renders the fixed reply template. Line order: title, score
// (only when present), author/date, blank, comment text, blank, source
// link. Absent fields drop their whole line, except the comment body,
// which falls back to NoCommentFallback.
func Format(c domain.GameComment) Reply {
	var b strings.Builder

	if c.Title != "" {
		fmt.Fprintf(&b, "🎮 <b>%s</b>\n", escape(c.Title))
	}
	if c.Score != nil {
		fmt.Fprintf(&b, "⭐ Score: %d/100\n", *c.Score)
	}
	if line := authorDateLine(c.Author, c.Date); line != "" {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	text := strings.TrimSpace(c.CommentText)
	if text == "" {
		text = NoCommentFallback
	} else {
		text = escape(truncateRunes(text, maxCommentRunes))
	}
	fmt.Fprintf(&b, "💬 %s\n", text)

	b.WriteByte('\n')
	fmt.Fprintf(&b, "🔗 <a href=\"%s\">View original post</a>", c.SourceURL)

	return Reply{Text: b.String(), ImageURL: c.ImageURL}
}

func authorDateLine(author, date string) string {
	switch {
	case author != "" && date != "":
		return fmt.Sprintf("👤 Comment by: %s - %s", escape(author), escape(date))
	case author != "":
		return "👤 Comment by: " + escape(author)
	case date != "":
		return "👤 " + escape(date)
	default:
		return ""
	}
}

// escape neutralizes the three characters Telegram's HTML parse mode
// treats as markup. Order matters: ampersands first.
func escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
