package facade

import "github.com/Mauddib28/bleep-tool-sub001/bluez"

func getObjectManager() (*bluez.ObjectManager, error) {
	return bluez.GetObjectManager()
}
