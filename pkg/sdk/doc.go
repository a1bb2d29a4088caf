// Package wordser embeds the wordser synonym and summary pipelines in a Go
// program without running the HTTP gateway.
//
//	client, err := wordser.New(ctx,
//	    wordser.WithThesaurusKey(os.Getenv("WEBSTER_THESAURUS_API_KEY")),
//	    wordser.WithOpenAIEngine("http://127.0.0.1:11434/v1", "llama3.2:1b", ""),
//	)
//	syns, err := client.Synonyms(ctx, "fast")
//	summary, err := client.Summarize(ctx, longText)
//
// Errors wrap the sentinels exported by this package; use errors.Is.
package wordser
