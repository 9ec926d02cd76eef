// Package dom is an in-memory host document.
//
// It implements host.Document and host.Element closely enough to drive the
// runtime outside a browser: the CLI renders pages with it, the playground
// server keeps one per connection, and the tests of every other package use
// it as their host tree.
//
// Asynchronous host behavior is modelled explicitly. Mutation records and
// visibility signals are queued and only delivered by Flush, which also
// drains tasks scheduled with Post. Await blocks until a task arrives from
// another goroutine and then flushes.
//
//	doc, _ := dom.ParseFragment(`<div o-scope="counter"><span o-text="count"></span></div>`)
//	rt := orbit.New(doc)
//	rt.Register("counter", counter)
//	rt.Start()
//	doc.Flush()
//	fmt.Println(doc.Body().InnerHTML())
//
// Elements are not safe for concurrent use.
package dom
