// Package llm provides chat completion clients and the Invoker used by graph
// nodes to call a language model.
//
// Client is the backend contract. EinoClient adapts any eino chat model, and
// NewClient builds one for the configured provider (groq, openai, claude,
// deepseek, ollama). MockClient scripts responses for tests.
//
// Invoker adds what every debate call needs: optional streaming to a
// DeltaObserver carried in the context, token metrics, a span per call, and
// a best-effort Interaction audit record.
package llm
