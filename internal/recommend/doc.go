// Package recommend turns a mood (and optional genre) into a list of songs.
//
// # Providers
//
// A [Provider] returns up to ten [models.Song] values for a [Request]:
//
//   - [OpenAIProvider] asks a chat-completion model for a JSON array of {title, artist} objects.
//   - [CuratedProvider] picks one of a handful of fixed lists by mood keyword. It never fails.
//
// [Fallback] composes two providers: the secondary answers whenever the primary fails or returns nothing.
//
// # Parsing
//
// Model output is parsed by [ParseSongs] with three strategies tried in order: the whole reply as JSON,
// the first bracketed span as JSON, then `"<title>" by <artist>` lines. Entries naming the title as
// "name" or the artist as "by" are accepted. Entries still missing either field are dropped, and a
// reply with no usable entry is rejected with [shared.ErrUnparseable].
package recommend
