package codebase

// FileBlock renders one file of the context blob: a delimiter, the
// repository-relative path and the content inside a fenced block.
func FileBlock(path, content string) string {
	return "\n_____  \n\nREPO FILE PATH: \n" + path +
		"\n\nFILE CONTENT:\n```\n" + content +
		"\n```\n\n____\n\n"
}
