package testutil

// WithMillingSetup adds a small shop floor dataset:
//
//	holder    HOLDER/BT_HOLDER
//	collet    SUB_HOLDER/COLLET_CHUCK
//	endmill   SOLID_TOOL/END_MILL
//	body      TOOL_BODY/FACE_MILL_BODY
//	insert    INSERT/MILLING_INSERT
//	screw     SCREW (free text)
//
//	asm-endmill = holder + collet + endmill
//	asm-face    = holder + body + insert x5 + screw x5
//	list-a      = T1: asm-endmill, T2: asm-face
func (b *Builder) WithMillingSetup() *Builder {
	return b.
		WithPart("holder", "HOLDER", Category("BT_HOLDER"), PartNo("BT40-ER32"), Maker("BIG")).
		WithPart("collet", "SUB_HOLDER", Category("COLLET_CHUCK"), PartNo("ER32-10"), Maker("BIG")).
		WithPart("endmill", "SOLID_TOOL", Category("END_MILL"), PartNo("EM10"), Maker("OSG")).
		WithPart("body", "TOOL_BODY", Category("FACE_MILL_BODY"), PartNo("FM63"), Maker("SANDVIK")).
		WithPart("insert", "INSERT", Category("MILLING_INSERT"), PartNo("APMT1135"), Maker("SANDVIK")).
		WithPart("screw", "SCREW", FreeText("clamp screw M2.5"), PartNo("M2.5x6"), Maker("SANDVIK")).
		WithAssembly("asm-endmill",
			Item("endmill", 1, ""), Item("holder", 1, "holder"), Item("collet", 1, "")).
		WithAssembly("asm-face", Named("face mill 63"),
			Item("holder", 1, "holder"), Item("body", 1, ""), Item("insert", 5, "insert"), Item("screw", 5, "")).
		WithToolingList("list-a", "machining center A",
			Tool("1", "asm-endmill", 1), Tool("2", "asm-face", 1))
}
