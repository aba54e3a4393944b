/*
Package session tracks the ambient design target across otherwise stateless commands.

The Store remembers the active wireframe and page reported by the host, and the list of
wireframes created during the process lifetime. The Bridge folds every settled response
into the Store and uses it to fill the default parent of commands that omit one.
Nothing is persisted: the context lives and dies with the process.
*/
package session
