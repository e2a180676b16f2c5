package feed

import (
	"strings"
	"testing"
)

func TestContentExtractor_Run_ValidHTML(t *testing.T) {
	extractor := NewContentExtractor()

	htmlContent := `
	<!DOCTYPE html>
	<html>
	<head>
		<title>Test Article</title>
	</head>
	<body>
		<header>
			<h1>Site Header</h1>
			<nav>Navigation</nav>
		</header>
		<main>
			<article>
				<h1>Main Article Title</h1>
				<p>This is the main content of the article. It contains several paragraphs of meaningful text that should be extracted by the readability algorithm.</p>
				<p>This is another paragraph with more content. The readability algorithm should identify this as the main content area and extract it properly.</p>
				<p>Here is some more substantial content to ensure we meet the character threshold. This paragraph adds more context and information that would be valuable to readers.</p>
			</article>
		</main>
		<aside>
			<div>Advertisement</div>
		</aside>
		<footer>
			<p>Copyright 2024</p>
		</footer>
	</body>
	</html>
	`

	result, err := extractor.Run([]byte(htmlContent))

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}

	if result == "" {
		t.Errorf("Expected non-empty result")
	}

	if !strings.Contains(result, "main content of the article") {
		t.Errorf("Expected extracted content to contain main article text")
	}

	if strings.Contains(result, "Advertisement") {
		t.Errorf("Expected extracted content to exclude advertisement")
	}

	if strings.Contains(result, "Copyright 2024") {
		t.Errorf("Expected extracted content to exclude footer")
	}
}

func TestContentExtractor_Run_EmptyData(t *testing.T) {
	extractor := NewContentExtractor()

	result, err := extractor.Run([]byte{})

	if err == nil {
		t.Errorf("Expected error for empty data")
	}

	if result != "" {
		t.Errorf("Expected empty result for empty data")
	}

	expectedError := "HTML data is empty"
	if err.Error() != expectedError {
		t.Errorf("Expected error message '%s', got '%s'", expectedError, err.Error())
	}
}

func TestContentExtractor_Run_NilData(t *testing.T) {
	extractor := NewContentExtractor()

	result, err := extractor.Run(nil)

	if err == nil {
		t.Errorf("Expected error for nil data")
	}

	if result != "" {
		t.Errorf("Expected empty result for nil data")
	}
}

func TestContentExtractor_Run_ScriptAndStyleRemoval(t *testing.T) {
	extractor := NewContentExtractor()

	htmlContent := `
	<!DOCTYPE html>
	<html>
	<head>
		<title>Article with Scripts</title>
		<style>
			body { font-family: Arial; }
		</style>
	</head>
	<body>
		<script>
			console.log("This script should be removed");
		</script>
		<article>
			<h1>Clean Article Content</h1>
			<p>This is the main content that should be extracted without any scripts or styles interfering. The article contains substantial text content that meets the readability algorithm's requirements.</p>
			<p>The content extraction should focus on the meaningful text and ignore technical elements. This paragraph provides additional context and information for readers.</p>
			<p>Here is more substantial content to ensure we meet the character threshold. This article discusses important topics and provides valuable information to readers who are interested in the subject matter.</p>
		</article>
	</body>
	</html>
	`

	result, err := extractor.Run([]byte(htmlContent))

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}

	if !strings.Contains(result, "main content that should be extracted") {
		t.Errorf("Expected extracted content to contain main article text")
	}

	if strings.Contains(result, "console.log") {
		t.Errorf("Expected extracted content to exclude script content")
	}

	if strings.Contains(result, "font-family") {
		t.Errorf("Expected extracted content to exclude style content")
	}
}

func TestContentExtractor_Run_FormattingPreserved(t *testing.T) {
	extractor := NewContentExtractor()

	htmlContent := `
	<!DOCTYPE html>
	<html>
	<head>
		<title>Formatted Article</title>
	</head>
	<body>
		<article>
			<h1>Article with Formatting</h1>
			<p>This paragraph contains <strong>bold text</strong> and <em>italic text</em> that should be preserved.</p>
			<p>Here's a <a href="https://example.com">link to example</a> that should be maintained.</p>
			<p>This paragraph follows the list and contains more content for the article, padding it out past the extraction threshold with additional sentences about nothing in particular.</p>
		</article>
	</body>
	</html>
	`

	result, err := extractor.Run([]byte(htmlContent))

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}

	if !strings.Contains(result, "<strong>") || !strings.Contains(result, "</strong>") {
		t.Errorf("Expected extracted content to preserve bold formatting")
	}

	if !strings.Contains(result, "<a href=") {
		t.Errorf("Expected extracted content to preserve links")
	}
}
