// Package pipeline defines the shared domain types, collaborator interfaces,
// typed errors and retry policy used by every stage of the newsroom pipeline.
//
// ProcessedArticle values are built through NewProcessedArticle so the field
// length limits hold from construction onward; the setters re-apply them.
package pipeline
