// Package service orchestrates the moderation workflows on top of the
// stores, the scoring model, the prediction cache, and the message queue.
// It owns the synchronous scoring path and the creation side of the
// asynchronous path; the consumer side lives in the worker package.
package service
