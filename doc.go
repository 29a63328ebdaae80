/*Package stretch implements a sparse, positionally-indexed vector over a
  genomic-scale integer coordinate axis.  Defined values occur in contiguous
  runs ("stretches"); each run is materialized as a dense buffer, and the gaps
  between runs cost nothing.  The container maintains a sorted, non-overlapping
  list of (interval, buffer) pairs under arbitrary point and range reads and
  writes, merging, splitting and trimming runs as writes land inside, outside,
  or straddling existing runs.

  Ranges are always half-open [start, end) with unit step; there is no strided
  access.  Positions fit in a PosType, which is defined as int64 so a single
  vector can span the longest chromosomes with room to spare.

  A Vector is not safe for concurrent mutation.  A reader that scans the run
  list while a writer rebuilds it would observe a partially-updated list, so
  callers needing concurrent access must serialize externally.
*/
package stretch
