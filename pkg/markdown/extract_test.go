package markdown

import "testing"

func TestExtract_SingleBlock(t *testing.T) {
	doc := "# title\n\n```lumen\nlet x = 1\n```\n"

	d := Extract(doc)

	if len(d.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(d.Blocks))
	}

	if d.Blocks[0].Source != "let x = 1" {
		t.Errorf("got %q", d.Blocks[0].Source)
	}

	if d.Blocks[0].StartLine != 4 {
		t.Errorf("got start line %d, want 4", d.Blocks[0].StartLine)
	}
}

func TestExtract_UntaggedFenceSkipped(t *testing.T) {
	doc := "```text\nnot lumen\n```\n\n```lumen\nlet y = 2\n```\n"

	d := Extract(doc)

	if len(d.Blocks) != 1 || d.Blocks[0].Source != "let y = 2" {
		t.Fatalf("expected only the lumen block, got %+v", d.Blocks)
	}
}

func TestExtract_CaseInsensitiveTag(t *testing.T) {
	doc := "```Lumen\nlet z = 3\n```\n"

	d := Extract(doc)

	if len(d.Blocks) != 1 {
		t.Fatalf("expected one block, got %d", len(d.Blocks))
	}
}

func TestExtract_ProseDirective(t *testing.T) {
	doc := "@package demo\n\n```lumen\nlet a = 1\n```\n"

	d := Extract(doc)

	if len(d.Directives) != 1 || d.Directives[0].Name != "package" || d.Directives[0].Value != "demo" {
		t.Fatalf("got %+v", d.Directives)
	}
}

func TestExtract_CommentDirective(t *testing.T) {
	doc := "<!-- @doc_mode narrative -->\n\n```lumen\nlet a = 1\n```\n"

	d := Extract(doc)

	if len(d.Directives) != 1 || d.Directives[0].Name != "doc_mode" || d.Directives[0].Value != "narrative" {
		t.Fatalf("got %+v", d.Directives)
	}
}

func TestDocument_Concat(t *testing.T) {
	doc := "```lumen\nlet a = 1\n```\n\ntext\n\n```lumen\nlet b = 2\n```\n"

	d := Extract(doc)
	text, toAbs := d.Concat()

	if text != "let a = 1\nlet b = 2\n" {
		t.Fatalf("got %q", text)
	}

	if toAbs(0) != d.Blocks[0].StartByte {
		t.Errorf("got %d, want %d", toAbs(0), d.Blocks[0].StartByte)
	}
}
