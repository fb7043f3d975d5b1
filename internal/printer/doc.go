// Package printer writes a simplified playlist tree as TXTP text.
//
// Sounds are written in tree order, each group after its children:
//
//	wem/100.wem #i
//	wem/200.wem #i
//	group = -L2 #@layer-v
//
// Times are printed in seconds with the shortest exact decimal form.
// Simpler mode drops the props that don't change what plays (delays,
// untouched volumes, bank origins) so near-identical outputs compare equal.
package printer
