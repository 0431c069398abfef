// Package uploadedfiles implements the uploaded files resource.
//
// Every file is one row in uploaded_files and one object in the media bucket; the
// row's fname is the object key. Keys must live under '<username>/uploads/' and are
// never overwritten: when the requested key is taken, a sibling name with a random
// suffix is used instead.
//
// # Operations
//
//   - Create: upload then record; the object is removed again if recording fails.
//   - Update: move to a new path by copying the object, or replace the contents.
//   - Delete: remove the record and the object together.
//   - Contents: download the stored bytes.
//
// Files are only visible to their owner; other users get 404.
package uploadedfiles
