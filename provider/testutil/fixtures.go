package testutil

import "tinygen/model"

// TestMessages returns a sample conversation for testing.
func TestMessages() []model.Message {
	return []model.Message{
		model.SystemMessage("You are an expert programmer."),
		model.UserMessage("Summarize this code base."),
		model.AssistantMessage("It is a tiny CLI."),
		model.UserMessage("Now, generate the diff file."),
	}
}

// SingleUserMessage returns a single user message for simple tests.
func SingleUserMessage(content string) []model.Message {
	return []model.Message{model.UserMessage(content)}
}

// FencedDiff wraps diff in the fenced bash block the diff passes emit.
func FencedDiff(diff string) string {
	return "```bash\n" + diff + "\n```"
}

// SampleDiff is a minimal well-formed unified diff.
const SampleDiff = `diff --git a/src/main.py b/src/main.py
index 58d38b6..23b0827 100644
--- a/src/main.py
+++ b/src/main.py
@@ -1,3 +1,3 @@
 import os
-print("hello")
+print("hello, world")
 os.exit(0)`
