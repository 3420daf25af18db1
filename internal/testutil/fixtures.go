package testutil

// SampleObject is a small .object document with one group holding a single
// square face at z=0.
const SampleObject = "Format type:keyword version: 1.1.0\n" +
	"begin_<object> sample\n" +
	"begin_<reference> \n" +
	"cartesian\n" +
	"end_<reference>\n" +
	"begin_<structure_group> buildings\n" +
	"begin_<structure> house\n" +
	"begin_<sub_structure> walls\n" +
	"begin_<face> floor\n" +
	"Material 0\n" +
	"nVertices 4\n" +
	"0.0000000000 0.0000000000 0.0000000000\n" +
	"1.0000000000 0.0000000000 0.0000000000\n" +
	"1.0000000000 1.0000000000 0.0000000000\n" +
	"0.0000000000 1.0000000000 0.0000000000\n" +
	"end_<face>\n" +
	"end_<sub_structure>\n" +
	"end_<structure>\n" +
	"end_<structure_group>\n" +
	"end_<object>\n"

// SampleSetup is a small .setup document with one antenna of two elements.
const SampleSetup = "Format type:keyword version: 1.1.0\n" +
	"begin_<project> sample\n" +
	"begin_<antenna> array\n" +
	"begin_<MimoElement>\n" +
	"position 0 0 0\n" +
	"antenna 1\n" +
	"rotation 0 0 0\n" +
	"end_<MimoElement>\n" +
	"begin_<MimoElement>\n" +
	"position 0.5 0 0\n" +
	"antenna 1\n" +
	"rotation 0 0 0\n" +
	"end_<MimoElement>\n" +
	"end_<antenna>\n" +
	"end_<project>\n"

// BrokenObject has a face whose vertex line is not three numbers.
const BrokenObject = "Format type:keyword version: 1.1.0\n" +
	"begin_<object> broken\n" +
	"begin_<structure_group> g\n" +
	"begin_<structure> s\n" +
	"begin_<sub_structure> sub\n" +
	"begin_<face> f\n" +
	"Material 0\n" +
	"nVertices 1\n" +
	"1 2\n" +
	"end_<face>\n" +
	"end_<sub_structure>\n" +
	"end_<structure>\n" +
	"end_<structure_group>\n" +
	"end_<object>\n"
