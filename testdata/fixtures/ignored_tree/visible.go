package ignoredtree

func Visible() string {
	return "indexed normally"
}
