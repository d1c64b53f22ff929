// Package source implements the five calendar publishers.
//
// Each source is split in two. Extraction walks the fetched markup or JSON
// with goquery or gjson and returns raw strings ("14 - 16 Mar", "FP1",
// "03:30 PM") without interpreting them. Crawl then hands those strings to
// the normalize and classify packages and assembles events through the
// pipeline.Crawl it was given. A missing node yields an empty string, never an
// error; an event without a URL is skipped.
package source
