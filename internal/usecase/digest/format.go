package digest

import (
	"fmt"
	"strings"

	"news-digest/internal/domain/entity"
)

// itemSeparator joins formatted items in the digest body.
const itemSeparator = "\n---\n\n"

// FormatItem renders one digest entry:
//
//	**{title}**
//	> **摘要**: {summary}
//	来源: {source}
//	链接: [{link}]({link})
func FormatItem(item entity.DigestItem) string {
	return fmt.Sprintf("**%s**\n> **摘要**: %s\n来源: %s\n链接: [%s](%s)\n",
		item.Title, item.Summary, item.Source, item.Link, item.Link)
}

// FormatDigest joins the formatted items. No items yields "".
func FormatDigest(items []entity.DigestItem) string {
	blocks := make([]string, 0, len(items))
	for _, it := range items {
		blocks = append(blocks, FormatItem(it))
	}
	return strings.Join(blocks, itemSeparator)
}
