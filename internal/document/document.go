// Package document serializes a file tree into the XML document handed to
// the model: the caller's instructions, the ASCII tree view and one element
// per collected file.
package document

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/holonoms/promptpal/internal/filetree"
)

const (
	header  = `<?xml version="1.0" encoding="UTF-8"?>`
	indent  = "  "
	treePad = "    "

	// defaultType labels content whose file name has no extension.
	defaultType = "text"
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Escape replaces the five XML special characters with their entities. The
// replacement happens in a single pass, so an ampersand introduced by an
// entity is never escaped again.
func Escape(text string) string {
	return escaper.Replace(text)
}

// ContentType returns the lowercase extension of name without its dot, or
// "text" when there is none.
func ContentType(name string) string {
	ext := strings.TrimPrefix(path.Ext(name), ".")
	if ext == "" {
		return defaultType
	}
	return strings.ToLower(ext)
}

// Serialize renders the document for root into a string.
func Serialize(root *filetree.Node, instructions string) string {
	var b strings.Builder
	// strings.Builder never fails to write.
	_ = Write(&b, root, instructions)
	return b.String()
}

// Write streams the document for root to w.
//
// Instructions and file content are placed in CDATA sections verbatim. A
// "]]>" sequence inside them is not escaped and ends the section early, so
// consumers that parse the output strictly may see a corrupted or injected
// document for such input.
func Write(w io.Writer, root *filetree.Node, instructions string) error {
	bw := bufio.NewWriter(w)

	writeHeader(bw, instructions)
	writeTreeView(bw, root)
	writeFiles(bw, root)
	bw.WriteString("</files>\n")

	return bw.Flush()
}

func writeHeader(w *bufio.Writer, instructions string) {
	w.WriteString(header + "\n")
	w.WriteString("<files>\n")
	fmt.Fprintf(w, "%s<instructions>%s</instructions>\n", indent, cdata(instructions))
}

func writeTreeView(w *bufio.Writer, root *filetree.Node) {
	w.WriteString(indent + "<tree_view>\n")
	if view := filetree.Render(root); view != "" {
		for _, line := range strings.Split(view, "\n") {
			w.WriteString(treePad + Escape(line) + "\n")
		}
	}
	w.WriteString(indent + "</tree_view>\n")
}

func writeFiles(w *bufio.Writer, root *filetree.Node) {
	filetree.Walk(root, func(segments []string, node *filetree.Node) {
		if node.File == nil {
			return
		}

		fmt.Fprintf(w, "%s<file>\n", indent)
		fmt.Fprintf(w, "%s<path>%s</path>\n", indent+indent, Escape(strings.Join(segments, "/")))
		fmt.Fprintf(w, "%s<size>%d</size>\n", indent+indent, node.File.Size)
		if text, ok := node.File.Content(); ok {
			fmt.Fprintf(w, "%s<content complete=\"%s\" type=\"%s\">%s</content>\n",
				indent+indent,
				strconv.FormatBool(node.File.Complete()),
				Escape(ContentType(node.Name)),
				cdata(text),
			)
		}
		fmt.Fprintf(w, "%s</file>\n", indent)
	})
}

func cdata(text string) string {
	return "<![CDATA[" + text + "]]>"
}
