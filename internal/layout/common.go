package layout

const darkThreshold = 120
