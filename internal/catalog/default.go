package catalog

var defaultLayers = []Layer{
	{Code: "HOLDER", Label: "ホルダー", SortOrder: 10},
	{Code: "TOOL_BODY", Label: "カッターボディ", SortOrder: 20},
	{Code: "INSERT", Label: "インサート", SortOrder: 30},
	{Code: "SOLID_TOOL", Label: "ソリッド工具", SortOrder: 40},
	{Code: "SUB_HOLDER", Label: "サブホルダー", SortOrder: 50},
	{Code: "SCREW", Label: "ねじ・クランプ", SortOrder: 60, AllowFreeCategory: true},
	{Code: "ACCESSORY", Label: "付属品", SortOrder: 70, AllowFreeCategory: true},
}

var defaultCategories = []Category{
	{LayerCode: "INSERT", Code: "MILLING_INSERT", Label: "ミーリング用", SortOrder: 10, Active: true},
	{LayerCode: "INSERT", Code: "TURNING_INSERT", Label: "旋削用", SortOrder: 20, Active: true},
	{LayerCode: "INSERT", Code: "DRILL_INSERT", Label: "穴あけ用", SortOrder: 30, Active: true},
	{LayerCode: "TOOL_BODY", Code: "MODULAR_HEAD", Label: "モジュラーヘッド", SortOrder: 10, Active: true},
	{LayerCode: "TOOL_BODY", Code: "FACE_MILL_BODY", Label: "フェイスミル", SortOrder: 20, Active: true},
	{LayerCode: "SOLID_TOOL", Code: "END_MILL", Label: "エンドミル", SortOrder: 10, Active: true},
	{LayerCode: "SOLID_TOOL", Code: "DRILL", Label: "ドリル", SortOrder: 20, Active: true},
	{LayerCode: "SOLID_TOOL", Code: "REAMER", Label: "リーマ", SortOrder: 30, Active: true},
	{LayerCode: "HOLDER", Code: "HSK_HOLDER", Label: "HSKホルダー", SortOrder: 10, Active: true},
	{LayerCode: "HOLDER", Code: "BT_HOLDER", Label: "BTホルダー", SortOrder: 20, Active: true},
	{LayerCode: "SUB_HOLDER", Code: "COLLET_CHUCK", Label: "コレットチャック", SortOrder: 10, Active: true},
	{LayerCode: "SUB_HOLDER", Code: "EXTENSION", Label: "延長ホルダー", SortOrder: 20, Active: true},
}

var defaultStatuses = []Status{
	{Code: "ACTIVE", Label: "有効"},
	{Code: "ARCHIVED", Label: "廃止"},
}

var defaultDictionary = New(defaultLayers, defaultCategories, defaultStatuses)

// Default returns the built-in dictionary. The seed migration mirrors it into
// the layers, categories and statuses tables.
func Default() *Dictionary {
	return defaultDictionary
}
