// Package stream provides Sources, which pull Rows from an Origin through a Codec, and Sinks,
// which push Rows to a Destination through a Codec.
//
// A Source decodes one Row ahead of the caller, so that HasNext is a side-effect-free check
// usable in a standard loop:
//
//	src, err := stream.OpenSource(ctx, file.CreateOrigin("rows.tsv.gz"), dsv.TabDelimited(), nil)
//	if err != nil {
//		return err
//	}
//	defer src.Close()
//	for src.HasNext() {
//		row, err := src.Next()
//		...
//	}
//
// Sources and Sinks are not safe for concurrent use. Independent instances are.
package stream
