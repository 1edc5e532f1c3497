// Package rowstream contains the core components of rowstream, a small layer for streaming
// tabular rows to and from delimited, optionally compressed, local or remote byte streams.
// This root package defines the types which are employed during the regular use of the library,
// as well as in its extension (new Codecs, Origins and Destinations), and is an excellent overview
// of rowstream's key concepts.
package rowstream
