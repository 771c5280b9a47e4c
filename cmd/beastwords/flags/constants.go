package flags

const Verbose = `verbose`
const VerboseShort = `v`
const Quiet = `quiet`
const QuietShort = `q`
const Config = `config`
const Partitions = `partitions`
const PartitionsShort = `p`
const Force = `force`
const ForceShort = `f`
const Glyph = `glyph`

// StandardStream as output target writes the document to stdout instead of a file.
const StandardStream = `-`
