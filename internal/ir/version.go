package ir

// GeneratorVersion is written in the banner of every output.
const GeneratorVersion = "0.4.0"

// Banner is the first line of the info footer.
const Banner = "AUTOGENERATED WITH txtpgen " + GeneratorVersion
