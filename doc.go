// Package views provides a server-side view renderer with layout inheritance
// and named content sections.
//
// views is organized around Views and Layouts. A View is a template file,
// found by its logical name under a view root, and executed with a Data map
// in scope. A View can declare that it extends a Layout; when it does, its
// direct output is thrown away and the Layout is rendered in its place. The
// View hands content to the Layout through Sections: named fragments the
// View captures with section and endSection and the Layout emits with
// renderSection.
//
// A Renderer does the work. It resolves view names to files, keeps track of
// the data in scope, owns the section stack, and drives layout substitution.
// Templates call back into the Renderer while they execute, to include other
// views, to open and close sections, and to declare their layout. Those
// nested calls reuse the same Renderer and must happen on the same
// goroutine: a Renderer is not safe for concurrent use.
//
// Servers should build one Site at startup. The Site holds the fs.FS the
// views live in and the configuration shared by every request, and is safe
// to share. Each request should get its own Renderer from Site.Renderer.
//
// Data handed to a Renderer comes in two flavors. Persistent data survives
// across Render calls on the same Renderer. Transient data is the persistent
// data plus whatever was set for the current render, and is thrown away when
// the top-level Render returns. Calls made with SaveData(true) (the default)
// promote transient data to persistent data.
//
// Templates themselves are executed by an Executor. HTMLExecutor, backed by
// html/template, is the default; TextExecutor uses text/template. Any
// template syntax can be plugged in by implementing Executor.
package views
