// Package simplify rewrites a built playlist tree into the shape the
// printer writes.
//
// Passes run in a fixed order, each over the whole tree:
//
//  1. clean: drop helper plugins, empty groups and segments that never play
//  2. self loops: split a looping segment into an intro and a loop body
//  3. props: move loop, delay and volume from single groups into children
//  4. times: clip trims, segment durations and transition windows
//  5. reorder: sort layer children by media id
//  6. loops: loop traps and infinite loop precedence
//  7. extra: initial delay removal and selectable groups
//  8. volume: master volume, manual or automatic
//
// Run is not safe to call twice on the same tree.
package simplify
