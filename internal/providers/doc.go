// Package providers implements the Caller interface for each supported LLM
// provider.
//
// Supported providers: OpenAI (chat completions, bearer-token auth) and Google
// Gemini (generateContent, API key in the query string). Each provider is
// described by one immutable [Config] held in a [Registry].
//
// Every failure is returned as an [*Error] whose [ErrorKind] is shared across
// providers: HTTP status codes, provider error bodies, and transport failures
// are classified into user-facing messages. No call is ever retried.
//
// Use [New] to obtain a Caller for a Config. HTTP clients are injected so that
// tests can point calls at local httptest servers.
package providers
