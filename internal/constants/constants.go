package constants

const EpsilonMie = 1e-7                  // per-order convergence tolerance
const HomogeneousRatio = 1e-6            // core/outer radius ratio below which the core is ignored
const OrderBoundFactor = 1.10            // downward recursion starts at 1.10*|m|x
const MinOrderBound = 150                // recursion bound floor
const MinPhysicalOrder = 135             // maximum physical order used together with MinOrderBound
const DefaultOrderCapacity int = 1000000 // logarithmic-derivative buffer guard
const DefaultAngleCapacity int = 100
const DefaultAngleCount = 19 // 0, 5, ..., 90 degrees
const DefaultSweepSteps = 50
const SearchTolerance = 1e-9 // radius searches stop within this fraction of the sweep end radius
