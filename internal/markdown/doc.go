// Package markdown renders the restricted Markdown dialect used by posts into
// injectable HTML and extracts the level 2/3 headings that drive the table of
// contents. The builtin engine is a single-pass line scanner; a goldmark
// engine sanitised by bluemonday is available for full CommonMark output.
// Frontmatter parsing and directory loading back the import workflow.
package markdown
