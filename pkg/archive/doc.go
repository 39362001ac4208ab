// Package archive provides a client for the Internet Archive advanced
// search API, plus a lazy page iterator over its results.
//
// The advanced search endpoint is paged: each request names a page index
// and a row count, and the response reports the total match count
// (numFound) alongside that page's documents. Iterator walks the pages
// sequentially and yields one document at a time, so a large collection
// never has more than one page of results in memory.
//
// Example usage:
//
//	client, err := archive.New(archive.DefaultConfig("my-app/1.0 (me@example.com)"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	it := client.Ebooks("ColumbiaUniversityLibraries", 100)
//	for it.Next(ctx) {
//		doc := it.Doc()
//		fmt.Println(doc.Identifier())
//	}
//	if err := it.Err(); err != nil {
//		log.Fatal(err)
//	}
package archive
